package panel

import (
	"fmt"
	"strings"
)

// StreamRecord is one re-broadcast definition: an upstream source relayed by
// the external transcoder into an HLS output path.
// The JSON field names are the on-disk format of the configuration document.
type StreamRecord struct {
	Name       string `json:"name"`
	SourceURL  string `json:"source_url"`
	OutputPath string `json:"output_path"`
	ChannelID  string `json:"channel_id"`
	Logo       string `json:"logo,omitempty"`
}

// SanitizedName is the filesystem-safe form of the record's name used for
// logo filenames and lifecycle markers.
func (r StreamRecord) SanitizedName() string {
	return SanitizeName(r.Name)
}

// SanitizeName replaces every space with an underscore.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// Document is the top-level shape of the configuration file.
type Document struct {
	Streams []StreamRecord `json:"streams"`
}

// StreamInput carries the user-editable fields of a record.
type StreamInput struct {
	Name       string
	SourceURL  string
	OutputPath string
}

// Validate reports the first blank required field, or a name that cannot
// be used as a filename.
func (in StreamInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name", ErrMissingField)
	case strings.TrimSpace(in.SourceURL) == "":
		return fmt.Errorf("%w: source_url", ErrMissingField)
	case strings.TrimSpace(in.OutputPath) == "":
		return fmt.Errorf("%w: output_path", ErrMissingField)
	case strings.ContainsAny(in.Name, `/\`) || in.Name == "." || in.Name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, in.Name)
	}
	return nil
}

// DeleteReport collects the outcome of the best-effort cleanup steps of a
// delete. A non-nil field never fails the delete itself.
type DeleteReport struct {
	Record    StreamRecord
	Reaper    error
	Logo      error
	OutputDir error
}

// Failures returns how many cleanup steps failed.
func (r DeleteReport) Failures() int {
	n := 0
	for _, err := range []error{r.Reaper, r.Logo, r.OutputDir} {
		if err != nil {
			n++
		}
	}
	return n
}
