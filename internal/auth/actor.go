package auth

// ActorUnknown is recorded when a verified token carries neither an
// email nor a subject claim.
const ActorUnknown = "agent:unknown"

// ResolveActor maps a verified identity to the stable actor string used
// in audit records. Email is preferred over the opaque subject id.
func ResolveActor(identity *Identity) string {
	if identity == nil {
		return ActorUnknown
	}
	if identity.Email != "" {
		return "agent:" + identity.Email
	}
	if identity.Subject != "" {
		return "agent:" + identity.Subject
	}
	return ActorUnknown
}
