package store

import (
	"context"
	"fmt"
	"sort"

	"finanzas/internal/core"
)

type (
	// Query filters and orders a typed snapshot. Both fields are optional;
	// without Less the stored insertion order is kept.
	Query[T any] struct {
		Where func(T) bool
		Less  func(a, b T) bool
	}

	// Result is a decoded snapshot. Err is set when the collection could
	// not be read or decoded; Items is then empty.
	Result[T any] struct {
		Items []T
		Err   error
	}

	// Repository is the per-entity view of a collection.
	Repository[T any] struct {
		docs       DocumentStore
		collection string
	}

	// Repositories groups the four finance collections over one store.
	Repositories struct {
		Accounts     *Repository[core.Account]
		Transactions *Repository[core.Transaction]
		Services     *Repository[core.Service]
		Budgets      *Repository[core.Budget]
	}
)

func NewRepository[T any](docs DocumentStore, collection string) *Repository[T] {
	return &Repository[T]{docs: docs, collection: collection}
}

func NewRepositories(docs DocumentStore) Repositories {
	return Repositories{
		Accounts:     NewRepository[core.Account](docs, Accounts),
		Transactions: NewRepository[core.Transaction](docs, Transactions),
		Services:     NewRepository[core.Service](docs, Services),
		Budgets:      NewRepository[core.Budget](docs, Budgets),
	}
}

func (r *Repository[T]) Collection() string { return r.collection }

// Subscribe streams decoded, filtered and ordered snapshots.
func (r *Repository[T]) Subscribe(ctx context.Context, q Query[T]) (<-chan Result[T], error) {
	snaps, err := r.docs.Subscribe(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", r.collection, err)
	}
	out := make(chan Result[T])
	go func() {
		defer close(out)
		for snap := range snaps {
			res := r.result(snap, q)
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// List is a one-shot read with the same semantics as a single snapshot.
func (r *Repository[T]) List(ctx context.Context, q Query[T]) ([]T, error) {
	docs, err := r.docs.List(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	res := r.result(Snapshot{Collection: r.collection, Documents: docs}, q)
	return res.Items, res.Err
}

func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	doc, err := r.docs.Get(ctx, r.collection, id)
	if err != nil {
		return zero, fmt.Errorf("get %s/%s: %w", r.collection, id, err)
	}
	v, err := Decode[T](doc)
	if err != nil {
		return zero, fmt.Errorf("decode %s/%s: %w", r.collection, id, err)
	}
	return v, nil
}

func (r *Repository[T]) Insert(ctx context.Context, v T) (string, error) {
	fields, err := Encode(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", r.collection, err)
	}
	id, err := r.docs.Insert(ctx, r.collection, fields)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", r.collection, err)
	}
	return id, nil
}

func (r *Repository[T]) Update(ctx context.Context, id string, patch Patch) error {
	if err := r.docs.Update(ctx, r.collection, id, patch); err != nil {
		return fmt.Errorf("update %s/%s: %w", r.collection, id, err)
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.docs.Delete(ctx, r.collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", r.collection, id, err)
	}
	return nil
}

func (r *Repository[T]) result(snap Snapshot, q Query[T]) Result[T] {
	if snap.Err != nil {
		return Result[T]{Items: []T{}, Err: fmt.Errorf("read %s: %w", r.collection, snap.Err)}
	}
	items := make([]T, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		v, err := Decode[T](d)
		if err != nil {
			return Result[T]{Items: []T{}, Err: fmt.Errorf("decode %s/%s: %w", r.collection, d.ID, err)}
		}
		if q.Where != nil && !q.Where(v) {
			continue
		}
		items = append(items, v)
	}
	if q.Less != nil {
		sort.SliceStable(items, func(i, j int) bool { return q.Less(items[i], items[j]) })
	}
	return Result[T]{Items: items}
}
