package entity

// ResolvedUpdate is the update description handed to a client. It is built
// fresh on every resolution and never cached.
type ResolvedUpdate struct {
	Version   string `json:"version"`
	PubDate   string `json:"pub_date"`
	URL       string `json:"url"`
	Signature string `json:"signature"`
	Notes     string `json:"notes"`
}
