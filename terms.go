package triplecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hupe1980/triplecheck/lexicon"
)

// TermReport summarizes a CheckTerms run.
type TermReport struct {
	RunID      string
	Checked    int
	NotFound   int
	Consistent int
	// Bad counts terms with a mismatched, missing or undecodable reverse entry.
	Bad int
	// Corrupt counts terms whose forward entry holds an undecodable ID.
	Corrupt  int
	Repaired int
	Results  []lexicon.Result
}

// CheckTerms checks each term's dictionary round trip, one transaction per
// term. With fix set, every repairable term is rewritten and committed;
// otherwise the transaction is rolled back. Repaired terms are not
// re-checked.
func CheckTerms(ctx context.Context, lex lexicon.Lexicon, terms []string, fix bool, optFns ...Option) (*TermReport, error) {
	o := applyOptions(optFns)
	rep := &TermReport{RunID: o.newRunID()}
	log := o.logger.WithRunID(rep.RunID)

	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return rep, NewError(KindLexicon, "check", err)
		}
		if err := checkTerm(ctx, lex, term, fix, o, log, rep); err != nil {
			return rep, err
		}
	}

	log.InfoContext(ctx, "done",
		"checked", rep.Checked,
		"consistent", rep.Consistent,
		"not_found", rep.NotFound,
		"bad", rep.Bad,
		"corrupt", rep.Corrupt,
		"repaired", rep.Repaired,
	)
	return rep, nil
}

func checkTerm(ctx context.Context, lex lexicon.Lexicon, term string, fix bool, o options, log *Logger, rep *TermReport) error {
	tx, err := lex.Begin(ctx)
	if err != nil {
		return NewError(KindLexicon, "begin", err)
	}

	res, err := lexicon.Check(ctx, tx, term)
	if err != nil {
		rbErr := tx.Rollback()
		if errors.Is(err, lexicon.ErrCorruptID) && rbErr == nil {
			rep.Checked++
			rep.Corrupt++
			log.WarnContext(ctx, "bad term", "term", term, "error", err)
			return nil
		}
		return NewError(KindLexicon, "check", errors.Join(err, rbErr))
	}

	rep.Checked++
	rep.Results = append(rep.Results, res)
	log.LogTermCheck(ctx, res)
	o.metricsCollector.RecordTermCheck(res.Status)

	switch {
	case res.Status == lexicon.StatusNotFound:
		rep.NotFound++
	case res.Consistent():
		rep.Consistent++
	default:
		rep.Bad++
	}

	if fix && res.Repairable() {
		inserted, err := lexicon.Repair(ctx, tx, term, res.ID)
		log.LogRepair(ctx, term, res.ID, inserted, err)
		o.metricsCollector.RecordRepair(err)
		if err != nil {
			return NewError(KindLexicon, "repair", err)
		}
		rep.Repaired++
		return nil
	}

	if err := tx.Rollback(); err != nil {
		return NewError(KindLexicon, "rollback", err)
	}
	return nil
}

// WriteText renders one line per checked term followed by the totals.
func (r *TermReport) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\n", res.Term.Value, res.Status)
	}
	if len(r.Results) > 0 {
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "run:\t%s\n", r.RunID)
	fmt.Fprintf(tw, "checked:\t%d\n", r.Checked)
	fmt.Fprintf(tw, "consistent:\t%d\n", r.Consistent)
	fmt.Fprintf(tw, "not found:\t%d\n", r.NotFound)
	fmt.Fprintf(tw, "bad:\t%d\n", r.Bad)
	fmt.Fprintf(tw, "corrupt:\t%d\n", r.Corrupt)
	fmt.Fprintf(tw, "repaired:\t%d\n", r.Repaired)
	return tw.Flush()
}
