package domain

// CallContext carries the authenticated caller's identity into every
// collaborator call. It replaces ad hoc per-request metadata: clients
// forward it as X-User-Id / X-User-Name / X-User-Roles headers.
type CallContext struct {
	UserID   string
	UserName string
	Roles    string
}
