package terms

import "github.com/diwise/cgr-adapter/pkg/cgr/localization"

const (
	StatusRoot     string = "CGR:Status-Root"
	StatusActive   string = "CGR:Status-Active"
	StatusPending  string = "CGR:Status-Pending"
	StatusNew      string = "CGR:Status-New"
	StatusInactive string = "CGR:Status-Inactive"
)

// NewStatusTerms builds the vocabulary used by the default status attribute
func NewStatusTerms() *Term {
	root := New(StatusRoot, localization.New("Status"), localization.New("The status of a GeoObject"))

	root.AddChild(New(StatusActive, localization.New("Active"), localization.New("Active")))
	root.AddChild(New(StatusPending, localization.New("Pending"), localization.New("Pending")))
	root.AddChild(New(StatusNew, localization.New("New"), localization.New("New")))
	root.AddChild(New(StatusInactive, localization.New("Inactive"), localization.New("Inactive")))

	return root
}
