package buildcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-folio/internal/aggregate"
	"github.com/goliatone/go-folio/internal/content"
	"github.com/goliatone/go-folio/internal/generator"
)

const (
	buildCollectionsMessageType = "folio.build.collections"
	generateSiteMessageType     = "folio.build.site_files"
	checkCollectionsMessageType = "folio.build.check"
)

// ResultCallback receives the outcome of a command. It is optional and runs
// synchronously inside the handler, including when the command fails.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries whichever result the command produced.
type ResultEnvelope struct {
	Summary  *aggregate.Summary
	Site     *generator.Result
	Checks   []CheckResult
	Metadata map[string]any
}

// CheckResult reports one loaded collection.
type CheckResult struct {
	Collection string
	Path       string
	Items      int
	Err        error
}

// BuildCollectionsCommand aggregates markdown into collection JSON files.
type BuildCollectionsCommand struct {
	// Only restricts the run to the named collections. Empty builds all.
	Only           []string       `json:"only,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildCollectionsCommand) Type() string { return buildCollectionsMessageType }

// Validate rejects blank or malformed collection names.
func (m BuildCollectionsCommand) Validate() error {
	return validateNames("folio.build.collections", m.Only)
}

// GenerateSiteFilesCommand writes sitemap, robots, feeds and the search
// index from the collection files already on disk.
type GenerateSiteFilesCommand struct {
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (GenerateSiteFilesCommand) Type() string { return generateSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (GenerateSiteFilesCommand) Validate() error { return nil }

// CheckCollectionsCommand loads and schema-validates collection files.
type CheckCollectionsCommand struct {
	Only           []string       `json:"only,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CheckCollectionsCommand) Type() string { return checkCollectionsMessageType }

// Validate rejects blank or malformed collection names.
func (m CheckCollectionsCommand) Validate() error {
	return validateNames("folio.build.check", m.Only)
}

func validateNames(code string, names []string) error {
	errs := validation.Errors{}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			errs["only"] = validation.NewError(code+".name_empty", "collection names must not be empty")
			break
		}
		if _, err := content.NormalizeName(name); err != nil {
			errs["only"] = validation.NewError(code+".name_invalid", "collection name is invalid")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return false
	}
	return g.GeneratorEnabled()
}
