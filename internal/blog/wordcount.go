package blog

import (
	"context"
	"regexp"
	"strings"

	"github.com/seoscribe/seoscribe-api/internal/logger"
)

const (
	// wordCountTolerance: a body is accepted at 80% of the requested target.
	wordCountTolerance = 0.80
	// maxContinuationAttempts bounds the continuation loop.
	maxContinuationAttempts = 5
	// minContinuationWords is the smallest chunk worth asking for; tiny
	// requests make the model pad instead of writing substance.
	minContinuationWords = 400
	// maxEmptyContinuations ends the loop after this many consecutive
	// empty continuations.
	maxEmptyContinuations = 2
)

var wordRe = regexp.MustCompile(`[\w']+`)

// CountWords counts the words of the visible text of an HTML fragment.
func CountWords(html string) int {
	return len(wordRe.FindAllString(visibleText(html), -1))
}

// enforceWordCount grows result.Body with bounded continuation calls until
// it reaches 80% of the target or the attempt budget runs out. It only ever
// appends; a shortfall becomes a warning, never a failure.
func (g *Generator) enforceWordCount(ctx context.Context, result *GenerationResult, req *GenerationRequest, city string, usage *Usage) {
	if req.TargetWordCount <= 0 {
		return
	}
	if strings.TrimSpace(result.Body) == "" {
		result.Report.AddWarning("body is empty, word count not enforced")
		return
	}

	threshold := int(float64(req.TargetWordCount) * wordCountTolerance)
	current := CountWords(result.Body)
	logger.Info("word count check", logger.Fields{
		"keyword": req.Keyword, "words": current, "threshold": threshold,
	})
	if current >= threshold {
		return
	}

	attempts := 0
	emptyStreak := 0
	for current < threshold && attempts < maxContinuationAttempts {
		needed := threshold - current
		if needed < minContinuationWords {
			needed = minContinuationWords
		}
		attempts++
		logger.Info("requesting continuation", logger.Fields{
			"keyword": req.Keyword, "attempt": attempts, "words_needed": needed,
		})

		fragment := g.requestContinuation(ctx, req, city, result.Body, needed, usage)
		if fragment == "" {
			emptyStreak++
			if emptyStreak >= maxEmptyContinuations {
				logger.Warn("two consecutive empty continuations, stopping", logger.Fields{
					"keyword": req.Keyword, "attempt": attempts,
				})
				break
			}
			continue
		}
		emptyStreak = 0

		result.Body += "\n" + fragment
		newCount := CountWords(result.Body)
		logger.Info("continuation appended", logger.Fields{
			"keyword": req.Keyword, "added": newCount - current, "words": newCount,
		})
		current = newCount
	}

	if current < threshold {
		result.Report.AddWarning(
			"word count target not reached after continuation attempts")
	}
}

// requestContinuation asks the primary model, then the fallback, for a
// body_append fragment. The fragment goes through the same cleaning pass as
// the initial body. An empty string means both models came back empty.
func (g *Generator) requestContinuation(ctx context.Context, req *GenerationRequest, city, currentBody string, wordsNeeded int, usage *Usage) string {
	prompt := g.prompts.ContinuationPrompt(req, city, currentBody, wordsNeeded)

	for _, tier := range g.modelTiers() {
		raw, err := g.complete(ctx, tier, g.prompts.ContinuationSystemPrompt(), prompt, continuationMaxTokens, continuationTimeout, usage)
		if err != nil {
			logger.Warn("continuation call failed", logger.Fields{
				"keyword": req.Keyword, "model": tier.model, "error": err.Error(),
			})
			continue
		}
		parsed := ParseModelJSON(raw)
		fragment := CleanBody(stringField(parsed, "body_append"))
		if fragment != "" {
			return fragment
		}
	}
	return ""
}
