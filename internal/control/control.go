package control

import (
	"time"

	"github.com/vietddude/trendlake/internal/artifact"
	"github.com/vietddude/trendlake/internal/harvest/fetch"
	"github.com/vietddude/trendlake/internal/infra/alert"
	"github.com/vietddude/trendlake/internal/infra/storage"
)

// Deps are the collaborators a run talks to. Harvest runs need Credentials
// and NewClient; publish runs need Converter, Compressor and Publisher.
type Deps struct {
	Credentials fetch.CredentialSource
	NewClient   fetch.ClientFactory
	Converter   artifact.Converter
	Compressor  artifact.Compressor
	Publisher   artifact.Publisher
	Alerter     alert.Alerter
	Runs        storage.RunRepository

	Sleeper fetch.Sleeper    // nil sleeps for real
	Now     func() time.Time // nil means time.Now
}
