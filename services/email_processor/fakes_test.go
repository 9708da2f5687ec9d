package email_processor

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/interfaces"
	mserrors "github.com/customeros/mailsorter/internal/errors"
	"github.com/customeros/mailsorter/internal/models"
)

func rawEmail(messageID, subject, body string) []byte {
	return []byte(fmt.Sprintf("Message-ID: <%s>\r\n"+
		"From: Sender <sender@example.com>\r\n"+
		"To: me@example.com\r\n"+
		"Subject: %s\r\n"+
		"Date: Mon, 10 Mar 2025 09:00:00 +0000\r\n"+
		"Content-Type: text/plain; charset=utf-8\r\n"+
		"\r\n"+
		"%s\r\n", messageID, subject, body))
}

type fakeMailbox struct {
	mu         sync.Mutex
	messages   []dto.RawMessage
	connectErr error
	streamErr  error
	connects   int
	closes     int
}

func (f *fakeMailbox) factory() interfaces.MailboxClientFactory {
	return func() interfaces.MailboxClient { return f }
}

func (f *fakeMailbox) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *fakeMailbox) FetchRecent(ctx context.Context, windowDays int) (iter.Seq2[dto.RawMessage, error], error) {
	messages := append([]dto.RawMessage(nil), f.messages...)
	streamErr := f.streamErr
	return func(yield func(dto.RawMessage, error) bool) {
		for _, msg := range messages {
			if !yield(msg, nil) {
				return
			}
		}
		if streamErr != nil {
			yield(dto.RawMessage{}, streamErr)
		}
	}, nil
}

func (f *fakeMailbox) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, msg *dto.NormalizedMessage) (*dto.Verdict, error) {
	args := m.Called(ctx, msg)
	verdict, _ := args.Get(0).(*dto.Verdict)
	return verdict, args.Error(1)
}

func withSubject(subject string) interface{} {
	return mock.MatchedBy(func(msg *dto.NormalizedMessage) bool {
		return msg.Subject == subject
	})
}

type memoryRepository struct {
	mu         sync.Mutex
	records    map[string]*models.Email
	order      []string
	hideExists bool
	insertErr  error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]*models.Email{}}
}

func (r *memoryRepository) Exists(ctx context.Context, messageID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideExists {
		return false, nil
	}
	_, ok := r.records[messageID]
	return ok, nil
}

func (r *memoryRepository) Insert(ctx context.Context, email *models.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, ok := r.records[email.MessageID]; ok {
		return errors.Wrapf(mserrors.ErrDuplicateKey, "message id %s", email.MessageID)
	}
	copied := *email
	r.records[email.MessageID] = &copied
	r.order = append(r.order, email.MessageID)
	return nil
}

func (r *memoryRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Email, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[messageID], nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.EmailClassified
	err    error
}

func (p *recordingPublisher) PublishEmailClassified(ctx context.Context, event dto.EmailClassified) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

type fakeArchiver struct {
	keys map[string][]byte
	err  error
}

func (a *fakeArchiver) Archive(ctx context.Context, messageID string, raw []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.keys == nil {
		a.keys = map[string][]byte{}
	}
	key := "raw/" + strings.ReplaceAll(messageID, "@", "_") + ".eml"
	a.keys[key] = raw
	return key, nil
}
