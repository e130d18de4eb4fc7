// Package content keeps the demo's user-authored content list in a
// session.Store under a single key, as a JSON array.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goGate/session"
)

// DefaultKey is the store key holding the content list.
const DefaultKey = "userContent"

const defaultCategory = "general"

var (
	ErrNotFound     = errors.New("content: not found")
	ErrInvalidDraft = errors.New("content: invalid draft")
	ErrCorrupt      = errors.New("content: stored list is corrupt")
)

// Item is one stored content entry.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	IsPublic  bool      `json:"isPublic"`
	Author    string    `json:"author"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Draft is the editable part of an Item.
type Draft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	IsPublic bool     `json:"isPublic"`
}

func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	d.Category = strings.TrimSpace(d.Category)
	if d.Title == "" {
		return Draft{}, fmt.Errorf("%w: title is required", ErrInvalidDraft)
	}
	if d.Content == "" {
		return Draft{}, fmt.Errorf("%w: content is required", ErrInvalidDraft)
	}
	if d.Category == "" {
		d.Category = defaultCategory
	}
	d.Tags = cleanTags(d.Tags)
	return d, nil
}

// ParseTags splits a comma separated tag list, dropping blanks.
func ParseTags(raw string) []string {
	return cleanTags(strings.Split(raw, ","))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Store is a read-modify-write list over a session.Store. Writes through
// one Store are serialized; separate Stores sharing a key are not.
type Store struct {
	kv  session.Store
	key string
	now func() time.Time

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides [DefaultKey].
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(kv session.Store, opts ...Option) *Store {
	s := &Store{kv: kv, key: DefaultKey, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every item in creation order.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Recent returns up to n items, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(items)
	if n >= 0 && len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, id string) (Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return Item{}, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return Item{}, ErrNotFound
	}
	return items[idx], nil
}

// Create appends a new item authored by author.
func (s *Store) Create(ctx context.Context, author session.User, d Draft) (Item, error) {
	d, err := d.normalize()
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}

	now := s.now().UTC()
	item := Item{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		Tags:      d.Tags,
		IsPublic:  d.IsPublic,
		Author:    author.Name,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, append(items, item)); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update replaces the editable fields of item id.
func (s *Store) Update(ctx context.Context, id string, d Draft) (Item, error) {
	d, err := d.normalize()
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return Item{}, ErrNotFound
	}

	item := &items[idx]
	item.Title, item.Content, item.Category = d.Title, d.Content, d.Category
	item.Tags, item.IsPublic = d.Tags, d.IsPublic
	item.UpdatedAt = s.now().UTC()

	if err := s.save(ctx, items); err != nil {
		return Item{}, err
	}
	return *item, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return ErrNotFound
	}
	return s.save(ctx, slices.Delete(items, idx, idx+1))
}

func (s *Store) load(ctx context.Context) ([]Item, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return items, nil
}

func (s *Store) save(ctx context.Context, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, string(raw))
}

func indexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}
