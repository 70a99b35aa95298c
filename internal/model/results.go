package model

// Result envelopes for endpoints that do not return a plain record.
// Defining them per endpoint (instead of poking at maps) keeps response
// validation at the API boundary.

// RegisterRequest is the body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult is the body of a successful POST /register.
type RegisterResult struct {
	Username string `json:"username"`
}

// LoginResult is the body of a successful POST /login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// LikeResult is the body of PUT /post/{id}/like. Likes is the new count,
// LikedBy the authoritative membership set — the client derives its own
// liked state from LikedBy rather than predicting the toggle.
type LikeResult struct {
	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
}

// ViewResult is the body of PUT /post/{id}/viewPost.
type ViewResult struct {
	Views    int      `json:"views"`
	ViewedBy []string `json:"viewedBy"`
}

// FollowResult is the body of the follow and unfollow operations: the
// acting user's updated following set.
type FollowResult struct {
	Following []string `json:"following"`
}

// FeedResult is the body of GET /followed.
type FeedResult struct {
	Success bool   `json:"success"`
	Data    []Post `json:"data"`
}
