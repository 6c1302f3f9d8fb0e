package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"feeproposals/services"
)

// ProposalStore is the remote side of an Editor. *Client implements it.
type ProposalStore interface {
	GetProposal(ctx context.Context, id string) (services.Proposal, error)
	CreateProposal(ctx context.Context, doc services.Proposal) (services.Proposal, error)
	UpdateProposal(ctx context.Context, doc services.Proposal) (services.Proposal, error)
}

// Notifier surfaces user-facing messages, e.g. as toasts.
type Notifier interface {
	Notify(level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level, message string)

func (f NotifierFunc) Notify(level, message string) { f(level, message) }

// LoadState tracks the editor's synchronization with the remote store.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

var (
	// ErrNotLoaded is returned by edits attempted before a document is available.
	ErrNotLoaded = errors.New("proposal is not loaded")
	// ErrSaveInProgress is returned by Save while an earlier save has not finished.
	ErrSaveInProgress = errors.New("proposal save already in progress")
)

// Editor owns the canonical in-memory copy of one proposal. Every edit goes
// through its methods, which apply the pure update functions of the services
// package. It is safe for concurrent use.
type Editor struct {
	mu      sync.Mutex
	store   ProposalStore
	id      string
	project string
	doc     services.Proposal
	state   LoadState
	dirty   bool
	saving  bool
	// seq identifies the newest load or save; older responses are dropped.
	seq uint64
	// edits counts local changes so a save can tell whether it covered all of them.
	edits uint64

	actor  string
	now    func() time.Time
	notify Notifier
	logger *zap.Logger
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithNotifier sets where user-facing errors are reported.
func WithNotifier(n Notifier) EditorOption {
	return func(e *Editor) { e.notify = n }
}

// WithClock overrides the time source used to stamp calculations.
func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

// WithActor sets the user recorded on discipline changes.
func WithActor(actor string) EditorOption {
	return func(e *Editor) { e.actor = actor }
}

// NewEditor creates an editor for proposalID. Use NewProposalID together with
// a project id to start a proposal that does not exist yet.
func NewEditor(store ProposalStore, proposalID, projectID string, logger *zap.Logger, opts ...EditorOption) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Editor{
		store:   store,
		id:      proposalID,
		project: projectID,
		now:     time.Now,
		notify:  NotifierFunc(func(string, string) {}),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProposalID returns the id of the edited proposal; NewProposalID until the
// first successful save.
func (e *Editor) ProposalID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.id
}

// State returns the current load state.
func (e *Editor) State() LoadState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Dirty reports whether there are edits not yet saved.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Document returns a deep copy of the current document.
func (e *Editor) Document() services.Proposal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Load synchronizes the editor with the remote store. New proposals get a
// default empty document without a network call. On failure the error is
// reported and the editor stays in StateFailed; there is no retry.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.id == NewProposalID {
		e.doc = services.NewProposal(e.project)
		e.state = StateReady
		e.dirty = false
		e.seq++
		e.mu.Unlock()
		return nil
	}
	e.seq++
	seq := e.seq
	id := e.id
	e.state = StateLoading
	e.mu.Unlock()

	doc, err := e.store.GetProposal(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		e.logger.Debug("Discarding stale proposal load",
			zap.String("proposal_id", id),
			zap.Uint64("seq", seq),
			zap.Uint64("latest_seq", e.seq),
		)
		return nil
	}

	if err != nil {
		e.state = StateFailed
		e.logger.Error("Failed to load proposal", zap.String("proposal_id", id), zap.Error(err))
		e.notify.Notify("error", "Failed to load proposal")
		return fmt.Errorf("load proposal %s: %w", id, err)
	}

	doc.Normalize()
	e.doc = doc
	e.state = StateReady
	e.dirty = false
	return nil
}

// Save sends the whole document to the remote store, creating it when it is
// new, and replaces local state with the server's copy. Edits made while the
// request is in flight are kept: the document then takes only the server's
// identity and version and stays dirty. On failure the error is reported and
// local state is left unchanged.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateReady {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.saving {
		e.mu.Unlock()
		return ErrSaveInProgress
	}
	e.saving = true
	doc := e.doc.Clone()
	edits := e.edits
	isNew := e.id == NewProposalID || doc.ID == ""
	e.mu.Unlock()

	var (
		saved services.Proposal
		err   error
	)
	if isNew {
		saved, err = e.store.CreateProposal(ctx, doc)
	} else {
		saved, err = e.store.UpdateProposal(ctx, doc)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false

	if err != nil {
		msg := "Failed to save proposal"
		if errors.Is(err, services.ErrVersionConflict) {
			msg = "This proposal was changed by someone else. Reload to see the latest version."
		}
		e.logger.Error("Failed to save proposal", zap.String("proposal_id", doc.ID), zap.Error(err))
		e.notify.Notify("error", msg)
		return fmt.Errorf("save proposal: %w", err)
	}

	saved.Normalize()
	e.id = saved.ID
	e.seq++

	if e.edits != edits {
		e.doc = withServerIdentity(e.doc, saved)
		e.logger.Info("Saved proposal with newer local edits pending",
			zap.String("proposal_id", saved.ID),
			zap.Int("version", saved.Version),
			zap.Uint64("pending_edits", e.edits-edits),
		)
	} else {
		e.doc = saved
		e.dirty = false
		e.logger.Info("Saved proposal",
			zap.String("proposal_id", saved.ID),
			zap.String("proposal_number", saved.ProposalNumber),
			zap.Int("version", saved.Version),
		)
	}
	e.notify.Notify("success", "Proposal saved")
	return nil
}

// withServerIdentity copies the store-managed fields of saved onto local so a
// later save updates the same record at the current version.
func withServerIdentity(local, saved services.Proposal) services.Proposal {
	local.ID = saved.ID
	local.ProposalNumber = saved.ProposalNumber
	local.RevisionNumber = saved.RevisionNumber
	local.StatusID = saved.StatusID
	local.Status = saved.Status
	local.StatusDetails = saved.StatusDetails
	local.CreatedBy = saved.CreatedBy
	local.UpdatedBy = saved.UpdatedBy
	local.Created = saved.Created
	local.Updated = saved.Updated
	local.Version = saved.Version
	return local
}

// update applies fn to the document under the lock.
func (e *Editor) update(fn func(services.Proposal) (services.Proposal, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return ErrNotLoaded
	}
	doc, err := fn(e.doc)
	if err != nil {
		return err
	}
	e.doc = doc
	e.dirty = true
	e.edits++
	return nil
}

// SetDescription replaces the free-text description.
func (e *Editor) SetDescription(description string) error {
	return e.update(func(doc services.Proposal) (services.Proposal, error) {
		doc.Description = description
		return doc, nil
	})
}

// AddContact appends a contact under a generated id and returns it.
func (e *Editor) AddContact(c services.Contact) (services.Contact, error) {
	var added services.Contact
	err := e.update(func(doc services.Proposal) (services.Proposal, error) {
		doc.Contacts, added = services.AddContact(doc.Contacts, c)
		return doc, nil
	})
	return added.Clone(), err
}

// UpdateContact merges patch into a contact; unknown ids are ignored.
func (e *Editor) UpdateContact(id string, patch services.ContactPatch) error {
	return e.update(func(doc services.Proposal) (services.Proposal, error) {
		doc.Contacts = services.UpdateContact(doc.Contacts, id, patch)
		return doc, nil
	})
}

// RemoveContact drops a contact; unknown ids are ignored.
func (e *Editor) RemoveContact(id string) error {
	return e.update(func(doc services.Proposal) (services.Proposal, error) {
		doc.Contacts = services.RemoveContact(doc.Contacts, id)
		return doc, nil
	})
}

// SetPrimaryContact makes id the only primary contact.
func (e *Editor) SetPrimaryContact(id string) error {
	return e.update(func(doc services.Proposal) (services.Proposal, error) {
		doc.Contacts = services.SetPrimaryContact(doc.Contacts, id)
		return doc, nil
	})
}

// SearchContacts filters the roster without changing it. The returned
// contacts are copies.
func (e *Editor) SearchContacts(query string) []services.Contact {
	e.mu.Lock()
	defer e.mu.Unlock()
	found := services.SearchContacts(e.doc.Contacts, query)
	out := make([]services.Contact, len(found))
	for i, c := range found {
		out[i] = c.Clone()
	}
	return out
}

// ApplyFeeCalculation merges a tagged fee batch into the document.
func (e *Editor) ApplyFeeCalculation(calc services.FeeCalculation) error {
	return e.update(func(doc services.Proposal) (services.Proposal, error) {
		return services.ApplyFeeCalculation(doc, calc, e.now().UTC())
	})
}

// SetDisciplineActive toggles a discipline on or off.
func (e *Editor) SetDisciplineActive(disciplineID string, active bool) error {
	return e.update(func(doc services.Proposal) (services.Proposal, error) {
		return services.SetDisciplineActive(doc, disciplineID, active, e.actor, e.now().UTC())
	})
}
