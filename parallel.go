package cliptl

import (
	"context"
	"sync"
	"time"
)

// DefaultBatchWorkers is the worker count TranslateParallel uses when given
// zero or less.
const DefaultBatchWorkers = 4

// TranslateParallel is TranslateBatch spread over a pool of workers.
// Identical texts are translated once and share the result. Items come back
// in input order; progress, if non-nil, is called once per input text.
func (t *Translator) TranslateParallel(ctx context.Context, texts []string, sourceLang, targetLang string, workers int, progress func(done, total int)) ([]BatchItem, error) {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if workers == 1 || len(texts) < 2 {
		return t.TranslateBatch(ctx, texts, sourceLang, targetLang, progress)
	}

	// Deduplicate texts, remembering every position each one fills
	positions := make(map[string][]int, len(texts))
	var unique []string
	for i, text := range texts {
		if _, seen := positions[text]; !seen {
			unique = append(unique, text)
		}
		positions[text] = append(positions[text], i)
	}

	items := make([]BatchItem, len(texts))
	jobs := make(chan string)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for w := 0; w < workers && w < len(unique); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for text := range jobs {
				res, err := t.Translate(ctx, TranslationRequest{
					Text:        text,
					SourceLang:  sourceLang,
					TargetLang:  targetLang,
					SubmittedAt: time.Now(),
				})

				mu.Lock()
				for _, i := range positions[text] {
					items[i] = BatchItem{Result: res, Err: err}
					done++
					if progress != nil {
						progress(done, len(texts))
					}
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, text := range unique {
		select {
		case jobs <- text:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return completed(items), err
	}
	return items, nil
}

// completed returns the leading items that were filled before cancellation.
func completed(items []BatchItem) []BatchItem {
	for i, item := range items {
		if item.Result == nil && item.Err == nil {
			return items[:i]
		}
	}
	return items
}
