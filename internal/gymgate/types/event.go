package types

type EventType string

const (
	EventTypeEntry   EventType = "entry"
	EventTypeExit    EventType = "exit"
	EventTypeUnknown EventType = "unknown"
)

type LogCategory string

const (
	LogCategoryInfo  LogCategory = "info"
	LogCategoryError LogCategory = "error"
)

type RegistrationStatus string

const (
	RegistrationPending RegistrationStatus = "pending"
	RegistrationSuccess RegistrationStatus = "success"
	RegistrationFailed  RegistrationStatus = "failed"
)

// CredentialType is the vendor family a member credential belongs to.
type CredentialType string

const (
	CredentialTypeHikvision CredentialType = "hikvision"
	CredentialTypeESSL      CredentialType = "essl"
)
