package enum

type EntityType string

const (
	CANDIDATE      EntityType = "CANDIDATE"
	PROCESSING_RUN EntityType = "PROCESSING_RUN"
	MAILBOX_CONFIG EntityType = "MAILBOX_CONFIG"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
