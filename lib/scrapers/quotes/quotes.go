// Package quotes fetches remote quote pages and extracts a single
// numeric value out of them with a per-item regex pattern.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pricewatch-backend/lib/telemetry"
	"pricewatch-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("pricewatch.lib.scrapers.quotes")

// ErrNoMatch means the pattern matched nothing parseable in the
// document. Recoverable, the caller flags the item and moves on.
var ErrNoMatch = errors.New("no value matched in document")

// ErrFetchFailed means the page could not be retrieved at all.
var ErrFetchFailed = errors.New("failed to fetch document")

var client = newClient()

func newClient() *resty.Client {
	c := resty.New()
	// some quote pages sit behind anti-bot walls
	c.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(c.GetClient().Transport)
	c.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	c.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(c, "pricewatch.lib.scrapers.quotes.http")
	return c
}

// Extract applies pattern to document and concatenates every captured
// group across every match, normalizing each group (decimal commas,
// interior whitespace) before parsing the result as a float. Patterns
// without capture groups contribute their whole match instead.
func Extract(document, pattern string) (float64, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("compile pattern: %w", err)
	}

	matches := re.FindAllStringSubmatch(document, -1)
	if len(matches) == 0 {
		return 0, ErrNoMatch
	}

	var b strings.Builder
	for _, m := range matches {
		groups := m[1:]
		if re.NumSubexp() == 0 {
			groups = m[0:1]
		}
		for _, g := range groups {
			b.WriteString(textutil.NormalizeDecimal(g))
		}
	}

	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, ErrNoMatch
	}
	return value, nil
}

// FetchValue retrieves the page at link and extracts a value with
// pattern. Network failures and non-200 responses come back as
// ErrFetchFailed, extraction failures as ErrNoMatch.
func FetchValue(ctx context.Context, link, pattern string) (float64, error) {
	ctx, span := tracer.Start(ctx, "FetchValue")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if res.StatusCode() != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrFetchFailed, res.StatusCode())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	value, err := Extract(res.String(), pattern)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return value, nil
}
