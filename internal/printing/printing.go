package printing

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
	"github.com/joe-hadchity/lescale-pos/internal/remote"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Bridge talks to the local print bridge: it enumerates the installed
// printers and dispatches rendered documents to one of them. A failed print
// never undoes the submission that preceded it; the operator just retries.
type Bridge struct {
	baseURL string
	client  *http.Client
}

func NewBridge(baseURL string) *Bridge {
	return &Bridge{baseURL: baseURL, client: http.DefaultClient}
}

// Printers lists the available printer names for operator selection.
func (b *Bridge) Printers(ctx context.Context) ([]string, *remote.OpError) {
	var names []string
	if opErr := remote.GetJSON(ctx, b.client, b.baseURL+"/printers", &names); opErr != nil {
		logger.Error().Str("kind", string(opErr.Kind)).Msgf("Printer enumeration failed: %s", opErr.Message)
		return nil, opErr
	}
	return names, nil
}

// Print sends one rendered document to the named printer.
func (b *Bridge) Print(ctx context.Context, job entity.PrintJob) *remote.OpError {
	if job.Copies < 1 {
		job.Copies = 1
	}
	if opErr := remote.PostJSON(ctx, b.client, b.baseURL+"/print", nil, job, nil); opErr != nil {
		logger.Error().Str("kind", string(opErr.Kind)).Msgf("Print dispatch to %s failed: %s", job.PrinterName, opErr.Message)
		return opErr
	}
	return nil
}
