package model

// Identity is the authenticated caller as reported by the identity provider.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
	PhotoURL    string
}

// Author is the author snapshot copied into a post or comment at creation time.
type Author struct {
	ID    string
	Name  string
	Image string
}

// Author builds the snapshot stored on new content. The name falls back to
// the email and the image to defaultAvatar.
func (i Identity) Author(defaultAvatar string) Author {
	name := i.DisplayName
	if name == "" {
		name = i.Email
	}
	image := i.PhotoURL
	if image == "" {
		image = defaultAvatar
	}
	return Author{ID: i.UserID, Name: name, Image: image}
}

// Error codes for HTTP responses
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
