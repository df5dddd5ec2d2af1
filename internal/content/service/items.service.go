package service

import (
	"cmp"
	"context"
	"slices"

	"resumecms/pkg/apperror"

	"github.com/google/uuid"
)

// Item is the pointer constraint for list items: a server-assigned key and an
// integer display position.
type Item[T any] interface {
	*T
	Key() string
	SetKey(id string)
	Position() int
	SetPosition(pos int)
}

// ItemCollection edits the item list embedded in a section's DRAFT.
type ItemCollection[P any, T any, PT Item[T]] struct {
	*Lifecycle[P]
	label    string
	items    func(*P) *[]T
	validate func(T) []apperror.FieldError
}

func NewItemCollection[P any, T any, PT Item[T]](lifecycle *Lifecycle[P], label string, items func(*P) *[]T, validate func(T) []apperror.FieldError) *ItemCollection[P, T, PT] {
	return &ItemCollection[P, T, PT]{Lifecycle: lifecycle, label: label, items: items, validate: validate}
}

// List returns the DRAFT items in display order without creating a DRAFT.
func (c *ItemCollection[P, T, PT]) List(ctx context.Context) ([]T, error) {
	draft, err := c.GetDraft(ctx)
	if err != nil || draft == nil {
		return []T{}, err
	}
	return c.sorted(*c.items(&draft.Payload)), nil
}

// ListPublished returns the PUBLISHED items in display order.
func (c *ItemCollection[P, T, PT]) ListPublished(ctx context.Context) ([]T, error) {
	published, err := c.GetPublished(ctx)
	if err != nil || published == nil {
		return []T{}, err
	}
	return c.sorted(*c.items(&published.Payload)), nil
}

func (c *ItemCollection[P, T, PT]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	draft, err := c.GetOrCreateDraft(ctx)
	if err != nil {
		return zero, err
	}
	idx := c.indexOf(*c.items(&draft.Payload), id)
	if idx < 0 {
		return zero, c.notFound(id)
	}
	return (*c.items(&draft.Payload))[idx], nil
}

// Add appends item with a new key. Without an explicit order it goes last.
func (c *ItemCollection[P, T, PT]) Add(ctx context.Context, item T, order *int) (T, error) {
	var zero T
	if err := c.check(item, order); err != nil {
		return zero, err
	}
	draft, err := c.GetOrCreateDraft(ctx)
	if err != nil {
		return zero, err
	}
	items := c.items(&draft.Payload)

	next := 0
	for i := range *items {
		if pos := PT(&(*items)[i]).Position(); pos >= next {
			next = pos + 1
		}
	}
	if order != nil {
		next = *order
	}
	PT(&item).SetKey(uuid.New().String())
	PT(&item).SetPosition(next)
	*items = append(*items, item)

	if _, err := c.Store().Save(ctx, draft); err != nil {
		return zero, err
	}
	return item, nil
}

// Update replaces the fields of an existing item. Its key is kept, and its
// position is kept unless order is given.
func (c *ItemCollection[P, T, PT]) Update(ctx context.Context, id string, item T, order *int) (T, error) {
	var zero T
	if err := c.check(item, order); err != nil {
		return zero, err
	}
	draft, err := c.GetOrCreateDraft(ctx)
	if err != nil {
		return zero, err
	}
	items := c.items(&draft.Payload)
	idx := c.indexOf(*items, id)
	if idx < 0 {
		return zero, c.notFound(id)
	}

	pos := PT(&(*items)[idx]).Position()
	if order != nil {
		pos = *order
	}
	PT(&item).SetKey(id)
	PT(&item).SetPosition(pos)
	(*items)[idx] = item

	if _, err := c.Store().Save(ctx, draft); err != nil {
		return zero, err
	}
	return item, nil
}

func (c *ItemCollection[P, T, PT]) Delete(ctx context.Context, id string) error {
	draft, err := c.GetOrCreateDraft(ctx)
	if err != nil {
		return err
	}
	items := c.items(&draft.Payload)
	idx := c.indexOf(*items, id)
	if idx < 0 {
		return c.notFound(id)
	}
	*items = slices.Delete(*items, idx, idx+1)
	_, err = c.Store().Save(ctx, draft)
	return err
}

// Reorder assigns order = index in ids. ids must hold exactly the current keys.
func (c *ItemCollection[P, T, PT]) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	draft, err := c.GetOrCreateDraft(ctx)
	if err != nil {
		return err
	}
	items := c.items(&draft.Payload)
	if len(*items) == 0 {
		return nil
	}

	existing := make([]string, len(*items))
	for i := range *items {
		existing[i] = PT(&(*items)[i]).Key()
	}
	requested := slices.Clone(ids)
	slices.Sort(existing)
	slices.Sort(requested)
	if !slices.Equal(existing, requested) {
		return apperror.Validation("orderedIds must contain exactly the same item IDs as current draft")
	}

	for pos, id := range ids {
		PT(&(*items)[c.indexOf(*items, id)]).SetPosition(pos)
	}
	*items = c.sorted(*items)
	_, err = c.Store().Save(ctx, draft)
	return err
}

func (c *ItemCollection[P, T, PT]) check(item T, order *int) error {
	var details []apperror.FieldError
	if order != nil && *order < 0 {
		details = append(details, apperror.FieldError{Field: "order", Message: "must be greater than or equal to 0"})
	}
	if c.validate != nil {
		details = append(details, c.validate(item)...)
	}
	if len(details) > 0 {
		return apperror.Validation("Validation failed", details...)
	}
	return nil
}

func (c *ItemCollection[P, T, PT]) indexOf(items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return PT(&item).Key() == id })
}

func (c *ItemCollection[P, T, PT]) sorted(items []T) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(PT(&a).Position(), PT(&b).Position())
	})
	return out
}

func (c *ItemCollection[P, T, PT]) notFound(id string) error {
	return apperror.NotFound(c.label + " not found: " + id)
}
