package vitals

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/vitals/internal/platform/metrics"
)

const maxLineBytes = 1 << 20

// LineError describes a line skipped during ingestion.
type LineError struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
	Rule       Rule   `json:"rule"`
	Message    string `json:"message"`
}

// IngestResult is the outcome of loading a vitals source.
type IngestResult struct {
	Store    *VisitStore `json:"-"`
	Accepted int         `json:"accepted"`
	Rejected []LineError `json:"rejected"`
}

// IngestSummary is the serialisable form of an IngestResult.
type IngestSummary struct {
	Patients []PatientRecord `json:"patients"`
	Accepted int             `json:"accepted"`
	Rejected []LineError     `json:"rejected"`
}

func (r *IngestResult) Summary() IngestSummary {
	return IngestSummary{
		Patients: r.Store.Records(),
		Accepted: r.Accepted,
		Rejected: r.Rejected,
	}
}

// readLine returns the next line without its terminator and the line's full
// length in bytes. Only the first maxLineBytes are kept; the rest of a longer
// line is drained so reading resumes at the next line.
func readLine(br *bufio.Reader) (string, int, error) {
	var buf []byte
	n := 0
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", n, err
		}
		n += len(frag)
		if n <= maxLineBytes {
			buf = append(buf, frag...)
		}
		if !isPrefix {
			return string(buf), n, nil
		}
	}
}

// Ingest reads vitals lines from r into a new VisitStore. Invalid or
// oversized lines are logged and skipped; only a failure to read r aborts, in
// which case no store is returned.
func Ingest(r io.Reader, logger zerolog.Logger) (*IngestResult, error) {
	start := time.Now()
	res := &IngestResult{Store: NewVisitStore(), Rejected: []LineError{}}

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, n, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			metrics.ObserveIngest(metrics.ResultError, time.Since(start))
			return nil, fmt.Errorf("%w: read line %d: %w", ErrSourceUnavailable, lineNo+1, err)
		}
		lineNo++

		var (
			id   int
			v    Visit
			perr error
		)
		if n > maxLineBytes {
			perr = invalid(RuleLineLength, strconv.Itoa(n))
			line = ""
		} else {
			if strings.TrimSpace(line) == "" {
				continue
			}
			id, v, perr = ParseLine(line)
		}
		if perr != nil {
			le := LineError{LineNumber: lineNo, Line: strings.TrimRight(line, " \t\r\n"), Message: perr.Error()}
			var ve *ValidationError
			if errors.As(perr, &ve) {
				le.Rule = ve.Rule
			}
			res.Rejected = append(res.Rejected, le)
			metrics.IncIngestLine(metrics.ResultError)
			metrics.IncIngestRejected(string(le.Rule))
			logger.Warn().
				Int("line_number", lineNo).
				Str("rule", string(le.Rule)).
				Msg(le.Message)
			continue
		}

		res.Store.Add(id, v)
		res.Accepted++
		metrics.IncIngestLine(metrics.ResultSuccess)
	}

	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(start))
	logger.Debug().
		Int("accepted", res.Accepted).
		Int("rejected", len(res.Rejected)).
		Int("patients", res.Store.Len()).
		Msg("vitals source loaded")
	return res, nil
}
