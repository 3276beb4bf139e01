package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// EventsClient publishes vendor change notifications for the admin console.
type EventsClient struct {
	client *supabase.Client
}

func NewEventsClient(client *supabase.Client) *EventsClient {
	return &EventsClient{
		client: client,
	}
}

func (e *EventsClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; row changes on the vendors
	// table already trigger Realtime for subscribed consoles. Explicit events
	// would go through the Realtime REST API here.
	return nil
}

func (e *EventsClient) PublishVendorEvent(vendorID string, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("vendor:%s", vendorID)
	return e.PublishEvent(channel, event, payload)
}

func VendorSavedPayload(vendorID, name string, dishCount int) map[string]interface{} {
	return map[string]interface{}{
		"vendor_id":  vendorID,
		"name":       name,
		"dish_count": dishCount,
	}
}

func VendorDeletedPayload(vendorID string) map[string]interface{} {
	return map[string]interface{}{
		"vendor_id": vendorID,
	}
}
