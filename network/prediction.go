package network

import (
	"github.com/automoto/hitscan-mp/shared/messages"
	"github.com/go-gl/mathgl/mgl64"
)

const predictionBufferSize = 64

// InputRecord is a movement request and where the local body ended up
// after it was applied.
type InputRecord struct {
	Input     messages.RequestMove
	Predicted mgl64.Vec3
}

// Reconciliation is the outcome of checking a prediction against the
// authority. When Snap is set the body must be placed at the authoritative
// position and Replay applied on top, oldest first.
type Reconciliation struct {
	Snap   bool
	Drift  float64 // zero unless a known prediction was off by more than the threshold
	Replay []InputRecord
}

// PredictionBuffer is a ring of the inputs not yet confirmed by the
// authority. The zero value is ready to use.
type PredictionBuffer struct {
	history [predictionBufferSize]InputRecord
	nextSeq uint32
	acked   uint32
}

// Next returns the sequence number for the next input. Sequences start at 1;
// 0 means the authority has applied nothing yet.
func (pb *PredictionBuffer) Next() uint32 {
	if pb.nextSeq == 0 {
		return 1
	}
	return pb.nextSeq
}

// Acked is the newest input the authority confirmed.
func (pb *PredictionBuffer) Acked() uint32 { return pb.acked }

// Store records an input and the predicted position after it.
func (pb *PredictionBuffer) Store(input messages.RequestMove, predicted mgl64.Vec3) {
	pb.history[input.Sequence%predictionBufferSize] = InputRecord{
		Input:     input,
		Predicted: predicted,
	}
	pb.nextSeq = input.Sequence + 1
}

// Get returns the record for seq, or false once its slot was reused.
func (pb *PredictionBuffer) Get(seq uint32) (InputRecord, bool) {
	rec := pb.history[seq%predictionBufferSize]
	if seq == 0 || rec.Input.Sequence != seq {
		return InputRecord{}, false
	}
	return rec, true
}

// Pending returns the stored inputs after seq, oldest first.
func (pb *PredictionBuffer) Pending(seq uint32) []InputRecord {
	var out []InputRecord
	for s := seq + 1; s < pb.nextSeq; s++ {
		if rec, ok := pb.Get(s); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Reconcile compares the authoritative position after input seq with what
// was predicted for it. Predictions within threshold are kept. Anything
// else, including an input too old to remember, asks for a snap.
// Acknowledgements older than the last one are ignored.
func (pb *PredictionBuffer) Reconcile(seq uint32, server mgl64.Vec3, threshold float64) Reconciliation {
	if seq != 0 && seq < pb.acked {
		return Reconciliation{}
	}
	pb.acked = seq

	rec, ok := pb.Get(seq)
	if ok {
		drift := rec.Predicted.Sub(server).Len()
		if drift <= threshold {
			return Reconciliation{}
		}
		pb.history[seq%predictionBufferSize].Predicted = server
		return Reconciliation{Snap: true, Drift: drift, Replay: pb.Pending(seq)}
	}
	return Reconciliation{Snap: true, Replay: pb.Pending(seq)}
}

// Reset forgets every input, for a newly possessed actor.
func (pb *PredictionBuffer) Reset() {
	*pb = PredictionBuffer{}
}
