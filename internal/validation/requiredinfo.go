package validation

import (
	"strings"

	"github.com/harrison/bulkcomplete/internal/models"
)

// Requirement bits of a dropdown option mask, as configured on the attribute definition.
const (
	MaskComment    = 1 << 0
	MaskAttachment = 1 << 1
	MaskURL        = 1 << 2
)

// RequiredInfo lists the supplemental info an answer option requires.
type RequiredInfo struct {
	Comment    bool
	Attachment bool
	URL        bool
}

// Any reports whether at least one kind of info is required.
func (r RequiredInfo) Any() bool {
	return r.Comment || r.Attachment || r.URL
}

// Title renders the heading of the required-info editor, e.g. "Required Comment and URL".
func (r RequiredInfo) Title() string {
	var parts []string
	if r.Comment {
		parts = append(parts, "Comment")
	}
	if r.Attachment {
		parts = append(parts, "Evidence")
	}
	if r.URL {
		parts = append(parts, "URL")
	}

	switch len(parts) {
	case 0:
		return "Required Info"
	case 1:
		return "Required " + parts[0]
	default:
		return "Required " + strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

// Resolve decodes a requirement bitmask.
func Resolve(mask int) RequiredInfo {
	return RequiredInfo{
		Comment:    mask&MaskComment != 0,
		Attachment: mask&MaskAttachment != 0,
		URL:        mask&MaskURL != 0,
	}
}

// ResolveOption resolves the requirements of the selected option.
// An option missing from the config map requires nothing.
func ResolveOption(options *models.MultiChoiceOptions, selected string) RequiredInfo {
	mask, ok := options.Mask(selected)
	if !ok {
		return RequiredInfo{}
	}
	return Resolve(mask)
}

// RequiredInfoFor resolves the requirements of an attribute's current selection.
func RequiredInfoFor(a *models.Attribute) RequiredInfo {
	if a.Type != models.TypeDropdown {
		return RequiredInfo{}
	}
	return ResolveOption(a.Options, a.Value.Text())
}
