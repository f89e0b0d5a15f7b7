package plex

// apiResponse wraps the MediaContainer root of media server responses.
type apiResponse struct {
	MediaContainer MediaContainer `json:"MediaContainer"`
}

// MediaContainer is the root container for Plex API responses.
type MediaContainer struct {
	Size      int         `json:"size"`
	Directory []Directory `json:"Directory,omitempty"`
	Metadata  []Metadata  `json:"Metadata,omitempty"`
}

// Directory represents a library section.
type Directory struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Metadata represents a media item or a collection.
type Metadata struct {
	RatingKey string `json:"ratingKey"`
	Key       string `json:"key"`
	GUID      string `json:"guid,omitempty"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	ChildCount int   `json:"childCount,omitempty"`
}

// Pin is a device-authorization code from plex.tv.
type Pin struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	AuthToken string `json:"authToken,omitempty"`
}

// User is the identity behind a token.
type User struct {
	ID       int    `json:"id"`
	UUID     string `json:"uuid,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// signInResponse is returned by the password signin endpoint.
type signInResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	AuthToken string `json:"authToken"`
}
