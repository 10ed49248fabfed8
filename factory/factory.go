package factory

import (
	"bytes"
	"crypto/sha256"
	"time"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/engine"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/registry"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	schemeName    = "quorum"
	schemeVersion = "1"
)

// Factory deterministically creates engine instances bound to one chain
// and records every creation in its index.
type Factory struct {
	chainID string
	index   *Index
	known   map[quorum.Identity]bool
	logger  log.Logger
	now     func() time.Time
}

// New returns a factory for the given chain. The logger may be nil.
func New(chainID string, logger log.Logger) (*Factory, error) {
	if !quorum.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrMalformedInput, "invalid chain ID %q", chainID)
	}
	if logger == nil {
		logger = quorum.DefaultLogger
	}
	return &Factory{
		chainID: chainID,
		index:   NewIndex(),
		known:   make(map[quorum.Identity]bool),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Index exposes the creation records for reads.
func (f *Factory) Index() *Index {
	return f.index
}

// Instance bundles a freshly created engine with its identity and the
// registry it gates.
type Instance struct {
	ID       quorum.Identity
	Engine   *engine.Engine
	Registry *registry.Registry
}

// Create derives the instance identity from the creator and salt, runs the
// one time membership setup and returns the ready engine. The same creator
// and salt always derive the same identity, so a repeated creation is
// rejected as a duplicate. The coins and invoker ports and the event sink
// may be nil.
func (f *Factory) Create(
	creator quorum.Identity,
	salt []byte,
	owners []quorum.Identity,
	weights []registry.Weight,
	threshold registry.Weight,
	coins engine.CoinMover,
	invoker engine.Invoker,
	sink registry.EventSink,
) (*Instance, error) {
	if err := creator.Validate(); err != nil {
		return nil, errors.Wrap(err, "creator")
	}
	if len(salt) == 0 {
		return nil, errors.Wrap(errors.ErrMalformedInput, "empty salt")
	}

	id := instanceIdentity(f.chainID, creator, salt)
	if f.known[id] {
		return nil, errors.Wrapf(errors.ErrDuplicate, "instance %s", id)
	}

	reg, err := registry.NewRegistry(id, owners, weights, threshold, sink)
	if err != nil {
		return nil, errors.Wrap(err, "setup")
	}
	eng, err := engine.New(engine.Config{
		SchemeName:    schemeName,
		SchemeVersion: schemeVersion,
		ChainID:       f.chainID,
		Instance:      id,
	}, reg, coins, invoker)
	if err != nil {
		return nil, errors.Wrap(err, "engine")
	}

	f.known[id] = true
	rec := f.index.record(creator, id, salt, f.now())
	f.logger.Info("instance created",
		"instance", id, "creator", creator, "sequence", rec.Sequence)

	return &Instance{ID: id, Engine: eng, Registry: reg}, nil
}

// instanceIdentity derives the deterministic identity of an instance. The
// chain ID is part of the derivation so identities never collide across
// deployments.
func instanceIdentity(chainID string, creator quorum.Identity, salt []byte) quorum.Identity {
	var buf bytes.Buffer
	buf.WriteString("quorum/instance")
	buf.WriteString(chainID)
	buf.Write(creator[:])
	buf.Write(salt)
	h := sha256.Sum256(buf.Bytes())
	var id quorum.Identity
	copy(id[:], h[:quorum.IdentityLength])
	return id
}
