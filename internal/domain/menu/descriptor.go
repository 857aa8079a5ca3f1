package menu

// Descriptor is the JSON menu instruction returned to the PBX on every
// hit: which prompt to play and what input to collect next.
//
// Min and SkipValue use pointers because zero and empty string are
// meaningful on the wire (clientIdNumber allows min 0 and an empty skip
// value) and must not be dropped by omitempty.
type Descriptor struct {
	Type        string  `json:"type"` // simpleMenu | getDTMF | record
	Name        string  `json:"name"`
	Times       int     `json:"times,omitempty"`
	Timeout     int     `json:"timeout,omitempty"`
	EnabledKeys string  `json:"enabledKeys,omitempty"`
	SetMusic    string  `json:"setMusic,omitempty"`
	Min         *int    `json:"min,omitempty"`
	Max         int     `json:"max,omitempty"`
	ConfirmType string  `json:"confirmType,omitempty"`
	Confirm     string  `json:"confirm,omitempty"`
	SkipKey     string  `json:"skipKey,omitempty"`
	SkipValue   *string `json:"skipValue,omitempty"`
	FileName    string  `json:"fileName,omitempty"`
	Files       []File  `json:"files"`
}

// File is one prompt entry: text to read and the keys active while it plays.
type File struct {
	Text          string `json:"text"`
	ActivatedKeys string `json:"activatedKeys"`
}
