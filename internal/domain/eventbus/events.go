package eventbus

// Record-change topics published by the carrier service.
const (
	EventCarrierCreated = "carrier:created"
	EventCarrierUpdated = "carrier:updated"
	EventCarrierDeleted = "carrier:deleted"
)

// CarrierEventData is the payload published with every carrier topic.
type CarrierEventData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
