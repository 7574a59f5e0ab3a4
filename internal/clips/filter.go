package clips

// Formats selects which clip representations are kept.
type Formats struct {
	PlainText bool `json:"plainText" toml:"plain_text"`
	RichText  bool `json:"richText" toml:"rich_text"`
	HTMLText  bool `json:"htmlText" toml:"html_text"`
	DataURI   bool `json:"dataURI" toml:"data_uri"`
}

// AllFormats keeps every representation.
var AllFormats = Formats{PlainText: true, RichText: true, HTMLText: true, DataURI: true}

// Filter blanks every representation whose flag is off and reports whether
// the result still carries a payload. Clips without any payload are
// dropped silently by the caller; the clip type plays no part in that
// decision.
func Filter(c Clip, f Formats) (Clip, bool) {
	if !f.PlainText {
		c.PlainText = ""
	}
	if !f.RichText {
		c.RichText = ""
	}
	if !f.HTMLText {
		c.HTMLText = ""
	}
	if !f.DataURI {
		c.DataURI = ""
	}
	return c, c.HasPayload()
}
