// Package sideshift implements the SideShift v2 REST API on top of a
// session.Session.
//
// Every method returns a core.Response envelope. Upstream failures, rate-limit
// rejections and transport errors are reported inside the envelope and never
// as panics or Go errors. RequestQuote and GetPairs additionally return a
// *core.ValidationError, before any request is made, when their input cannot
// produce a valid call.
//
// Example usage:
//
//	config := core.DefaultConfig().WithCredentials(secret, affiliateID)
//	client, err := sideshift.New(config)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	pair := client.GetPair(ctx, "btc-bitcoin", "eth-ethereum")
//	if !pair.Success {
//	    return errors.New(pair.Error)
//	}
package sideshift
