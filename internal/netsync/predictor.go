package netsync

import (
	"log/slog"

	"github.com/udisondev/skirmish/internal/game/effect"
	"github.com/udisondev/skirmish/internal/model"
	"github.com/udisondev/skirmish/internal/world"
)

// Prediction is an object a client spawned locally ahead of the authority.
// Visual only: damage is never resolved for it.
type Prediction struct {
	Seq       uint64
	ID        model.EntityID
	Ability   string
	Spec      effect.SpawnSpec
	Position  model.Vec2
	Direction model.Vec2
}

// Predictor is the client-side bookkeeping for predicted ability objects.
// It hands out ids from the predicted range and swaps them for
// authoritative ids once the server answers.
type Predictor struct {
	ids     *world.IDGenerator
	seq     uint64
	pending map[model.EntityID]Prediction
	bySeq   map[uint64]model.EntityID
	mapped  map[model.EntityID]model.EntityID
}

// NewPredictor creates an empty predictor.
func NewPredictor() *Predictor {
	return &Predictor{
		ids:     world.NewIDGenerator(),
		pending: make(map[model.EntityID]Prediction),
		bySeq:   make(map[uint64]model.EntityID),
		mapped:  make(map[model.EntityID]model.EntityID),
	}
}

// Predict records a local spawn and builds the request for the authority.
func (p *Predictor) Predict(actor model.EntityID, ability string, spec effect.SpawnSpec, pos, dir model.Vec2) (AbilityRequest, Prediction) {
	p.seq++
	pred := Prediction{
		Seq:       p.seq,
		ID:        p.ids.NextPredictedID(),
		Ability:   ability,
		Spec:      spec,
		Position:  pos,
		Direction: dir,
	}
	p.pending[pred.ID] = pred
	p.bySeq[pred.Seq] = pred.ID

	req := AbilityRequest{
		Seq:          pred.Seq,
		Actor:        actor,
		Ability:      ability,
		Direction:    dir,
		PredictedIDs: []model.EntityID{pred.ID},
	}
	return req, pred
}

// Reconcile applies an id mapping from the authority. Returns the
// prediction it settles; ok is false for unknown or repeated mappings.
func (p *Predictor) Reconcile(m IDMapping) (Prediction, bool) {
	pred, ok := p.pending[m.Predicted]
	if !ok {
		slog.Debug("id mapping for unknown prediction", "predicted", m.Predicted)
		return Prediction{}, false
	}
	delete(p.pending, m.Predicted)
	delete(p.bySeq, pred.Seq)
	p.mapped[m.Predicted] = m.Authoritative
	return pred, true
}

// Reject drops the prediction of a refused request. The caller removes
// the local object.
func (p *Predictor) Reject(r Reject) (Prediction, bool) {
	id, ok := p.bySeq[r.Seq]
	if !ok {
		return Prediction{}, false
	}
	pred := p.pending[id]
	delete(p.pending, id)
	delete(p.bySeq, r.Seq)
	return pred, true
}

// Resolve returns the authoritative id for id. Ids that are not
// predicted, or not mapped yet, come back unchanged.
func (p *Predictor) Resolve(id model.EntityID) model.EntityID {
	if auth, ok := p.mapped[id]; ok {
		return auth
	}
	return id
}

// Pending returns the number of unanswered predictions.
func (p *Predictor) Pending() int {
	return len(p.pending)
}
