// Package sources provides the adapter contract and shared plumbing for
// publisher source clients.
//
// Each publisher family (arXiv, CVF, IEEE Xplore, ...) implements the
// Adapter interface in its own subpackage. Adapters share the throttled
// HTTP client and are registered in a Registry keyed by publisher tag,
// giving the retrieval and completion layers one uniform surface.
//
// Example usage:
//
//	adapter := cvf.New(cvf.Config{})
//	enum, err := adapter.Enumerate(ctx, "CVPR", 2023)
//	for {
//		batch, err := enum.Next(ctx)
//		if err != nil || len(batch) == 0 {
//			break
//		}
//		// process batch
//	}
package sources

import (
	"context"

	"github.com/mdaehl/PaperStream/internal/domain"
)

// Adapter is the interface every publisher source client implements.
type Adapter interface {
	// Descriptor returns the adapter's immutable identity and policy:
	// publisher tag, supported venues, earliest year, credential
	// requirement and throttling parameters.
	Descriptor() domain.AdapterDescriptor

	// Enumerate starts a lazy enumeration of all papers of one venue
	// edition. A venue/year outside the adapter's support window returns
	// domain.UnsupportedVenueError before any network traffic.
	//
	// Implementations should:
	//   - Respect context cancellation
	//   - Acquire the throttler before every outgoing request
	//   - Return domain.ParseError on structural drift of the source
	//   - Treat a missing abstract as an empty field, not an error
	Enumerate(ctx context.Context, venue string, year int) (*Enumeration, error)

	// FetchDetail resolves a draft record (typically title + URL from a
	// feed entry or an enumeration batch) into a full record. The draft
	// is not mutated; the returned record carries whatever fields the
	// source provides.
	//
	// Returns domain.NotFoundError if the source has no such paper.
	FetchDetail(ctx context.Context, draft *domain.PaperRecord) (*domain.PaperRecord, error)
}

// BatchFunc produces the next batch of an enumeration. An empty batch
// with a nil error signals the end of the sequence.
type BatchFunc func(ctx context.Context) ([]domain.PaperRecord, error)

// Enumeration is a finite, non-restartable cursor over the papers of one
// venue edition. Each Next call performs at most one page or network
// fetch. Enumerations are not safe for concurrent use.
type Enumeration struct {
	next BatchFunc
	done bool
}

// NewEnumeration creates an enumeration backed by the given batch
// producer.
func NewEnumeration(next BatchFunc) *Enumeration {
	return &Enumeration{next: next}
}

// Next returns the next batch of records. After the sequence ends or a
// batch fails, every further call returns an empty batch and nil error.
func (e *Enumeration) Next(ctx context.Context) ([]domain.PaperRecord, error) {
	if e.done {
		return nil, nil
	}
	batch, err := e.next(ctx)
	if err != nil {
		e.done = true
		return nil, err
	}
	if len(batch) == 0 {
		e.done = true
	}
	return batch, nil
}

// Collect drains the enumeration into a single slice. Records gathered
// before a failing batch are returned alongside the error.
func Collect(ctx context.Context, e *Enumeration) ([]domain.PaperRecord, error) {
	var records []domain.PaperRecord
	for {
		batch, err := e.Next(ctx)
		if err != nil {
			return records, err
		}
		if len(batch) == 0 {
			return records, nil
		}
		records = append(records, batch...)
	}
}
