package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/clauseguard/internal/logging"
	"github.com/raysh454/clauseguard/internal/model"
)

// Change is one chunk of the text diff between two versions.
type Change struct {
	// Type is "added" or "removed".
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Comparison contrasts two versions of a contract.
type Comparison struct {
	Old *model.AssessmentResult `json:"old"`
	New *model.AssessmentResult `json:"new"`

	// ScoreDelta is New.Score - Old.Score; positive means safer.
	ScoreDelta int `json:"score_delta"`

	// Category ids present in only one version, or in both.
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Unchanged []string `json:"unchanged"`

	Changes    []Change `json:"changes"`
	Insertions int      `json:"insertions"`
	Deletions  int      `json:"deletions"`
}

// Summary is a one-line description of the comparison.
func (c *Comparison) Summary() string {
	verdict := "unchanged"
	switch {
	case c.ScoreDelta > 0:
		verdict = "safer"
	case c.ScoreDelta < 0:
		verdict = "riskier"
	}
	return fmt.Sprintf("score %d -> %d (%+d, %s); %d risk categories added, %d removed",
		c.Old.Score, c.New.Score, c.ScoreDelta, verdict, len(c.Added), len(c.Removed))
}

// Compare analyzes both versions concurrently and reports how the risk
// profile and the text changed. The first failure cancels the other
// analysis.
func (a *Analyzer) Compare(ctx context.Context, oldIn, newIn Input) (*Comparison, error) {
	var (
		oldRes, newRes *model.AssessmentResult
		oldText        string
		newText        string
	)
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, doc, err := a.analyze(groupCtx, oldIn, nil)
		if err != nil {
			return fmt.Errorf("old version: %w", err)
		}
		oldRes, oldText = res, doc.Text
		return nil
	})
	g.Go(func() error {
		res, doc, err := a.analyze(groupCtx, newIn, nil)
		if err != nil {
			return fmt.Errorf("new version: %w", err)
		}
		newRes, newText = res, doc.Text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := &Comparison{Old: oldRes, New: newRes, ScoreDelta: newRes.Score - oldRes.Score}
	cmp.Added, cmp.Removed, cmp.Unchanged = categoryDelta(oldRes, newRes)
	cmp.Changes, cmp.Insertions, cmp.Deletions = textDiff(oldText, newText)

	a.logger.Info("documents compared",
		logging.Field{Key: "old", Value: oldRes.DocumentName},
		logging.Field{Key: "new", Value: newRes.DocumentName},
		logging.Field{Key: "score_delta", Value: cmp.ScoreDelta})
	return cmp, nil
}

// categoryDelta compares the category sets in catalog-first-seen order.
func categoryDelta(oldRes, newRes *model.AssessmentResult) (added, removed, unchanged []string) {
	oldSet, oldOrder := categorySet(oldRes)
	newSet, newOrder := categorySet(newRes)
	added, removed, unchanged = []string{}, []string{}, []string{}
	for _, id := range newOrder {
		if oldSet[id] {
			unchanged = append(unchanged, id)
		} else {
			added = append(added, id)
		}
	}
	for _, id := range oldOrder {
		if !newSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed, unchanged
}

func categorySet(r *model.AssessmentResult) (map[string]bool, []string) {
	set := make(map[string]bool)
	var order []string
	for _, m := range r.Matches {
		if !set[m.CategoryID] {
			set[m.CategoryID] = true
			order = append(order, m.CategoryID)
		}
	}
	return set, order
}

// textDiff returns the non-blank inserted and deleted chunks of a
// semantically cleaned character diff, with their rune totals.
func textDiff(oldText, newText string) ([]Change, int, int) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	changes := make([]Change, 0)
	var ins, del int
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
			ins += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			kind = "removed"
			del += len([]rune(d.Text))
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			changes = append(changes, Change{Type: kind, Content: d.Text})
		}
	}
	return changes, ins, del
}
