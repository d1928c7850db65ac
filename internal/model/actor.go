package model

// Actor is the identity the auth collaborator hands us on every request.
// The engine trusts this boundary completely; it never checks credentials.
type Actor struct {
	UserID    int64
	TenantID  int64
	Moderator bool
}

// ActorSummary is the public shape of a user joined onto comments and
// check-in listings for display.
type ActorSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	DisplayName *string `db:"display_name" json:"display_name"`
	AvatarURL   *string `db:"avatar_url" json:"avatar_url"`
}
