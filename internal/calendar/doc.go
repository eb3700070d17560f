// Package calendar provides a Google Calendar free/busy provider for the
// availability engine.
//
// The client wraps the Google Calendar API and exposes free/busy queries as
// busy spans that feed directly into the availability pipeline. It supports
// multi-account authentication using the Google OAuth2 flow.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	participants, err := client.ResolveParticipants(ctx,
//	    []string{"alice@example.com", "bob@example.com"},
//	    windowStart, windowEnd)
package calendar
