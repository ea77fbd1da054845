package domain

// FieldChange is one before/after pair in a computed update diff.
// Values are the normalized user-visible forms; nil means absent.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}
