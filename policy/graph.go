package policy

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
)

// logSumExp adds nodes to the graph of logits which compute
// log(Σ exp(logits)) along an axis. The maximum logit is subtracted
// before exponentiating to avoid overflow.
func logSumExp(logits *G.Node, along int) *G.Node {
	// Calculate the max logit per row
	max := G.Must(G.Max(logits, along))

	exponent := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
	exponent = G.Must(G.Exp(exponent))

	// Sum along rows
	sum := G.Must(G.Sum(exponent, along))

	log := G.Must(G.Log(sum))

	return G.Must(G.Add(max, log))
}

// softmax adds nodes to the graph of logits, which has one row per
// observation and one column per action, computing the probability
// and log probability of each action.
//
// With LogSoftmax, log probabilities are logits - logSumExp(logits)
// and probabilities are their exponent. With LogOfSoftmax, the softmax
// probabilities are computed first and log probabilities are their
// logarithm, so that saturated probabilities have log probability
// -Inf.
func softmax(logits *G.Node, mode LogProbMode) (probs, logProbs *G.Node,
	err error) {
	if !logits.IsMatrix() {
		return nil, nil, fmt.Errorf("softmax: logits must be a matrix")
	}

	switch mode {
	case LogSoftmax:
		lse := logSumExp(logits, 1)
		logProbs = G.Must(G.BroadcastSub(logits, lse, nil, []byte{1}))
		probs = G.Must(G.Exp(logProbs))

	case LogOfSoftmax:
		max := G.Must(G.Max(logits, 1))
		exp := G.Must(G.BroadcastSub(logits, max, nil, []byte{1}))
		exp = G.Must(G.Exp(exp))
		invSum := G.Must(G.Inverse(G.Must(G.Sum(exp, 1))))
		probs = G.Must(G.BroadcastHadamardProd(exp, invSum, nil, []byte{1}))
		logProbs = G.Must(G.Log(probs))

	default:
		return nil, nil, fmt.Errorf("softmax: unknown log probability "+
			"mode %q", mode)
	}

	return probs, logProbs, nil
}

// categoricalLogProb adds nodes to the graph of logits which compute
// the log probability of a single action per row. The oneHot node
// should hold a 1 in the column of the selected action and 0
// elsewhere. With LogOfSoftmax the probability of the selected action
// is chosen before taking its logarithm so that masked out actions of
// probability 0 do not contribute 0 * -Inf.
func categoricalLogProb(logits, oneHot *G.Node, mode LogProbMode) (*G.Node,
	error) {
	probs, logProbs, err := softmax(logits, mode)
	if err != nil {
		return nil, fmt.Errorf("categoricalLogProb: %v", err)
	}

	if mode == LogOfSoftmax {
		selected := G.Must(G.HadamardProd(oneHot, probs))
		selected = G.Must(G.Sum(selected, 1))
		return G.Must(G.Log(selected)), nil
	}

	selected := G.Must(G.HadamardProd(oneHot, logProbs))
	return G.Must(G.Sum(selected, 1)), nil
}

// gaussianLogPdf adds nodes to the graph of mean/logStd/actions which
// compute the log density of each row of actions under a diagonal
// Gaussian with the corresponding row of mean as its mean and
// exp(logStd) as its standard deviation. The logStd node is a single
// row shared by all rows of mean. The log density is summed over
// action dimensions:
//
//	log p(a) = Σ_j -(a_j - μ_j)² / (2σ_j²) - log σ_j - log √(2π)
func gaussianLogPdf(mean, logStd, actions *G.Node) *G.Node {
	graph := mean.Graph()
	if graph != logStd.Graph() || graph != actions.Graph() {
		panic("gaussianLogPdf: all nodes must share the same graph")
	}

	negativeHalf := G.NewConstant(-0.5)
	dims := float64(actions.Shape()[1])

	// (a - μ) / σ, with 1/σ = exp(-log σ) broadcast along the batch
	invStd := G.Must(G.Exp(G.Must(G.Neg(logStd))))
	exponent := G.Must(G.Sub(actions, mean))
	exponent = G.Must(G.BroadcastHadamardProd(exponent, invStd, nil,
		[]byte{0}))
	exponent = G.Must(G.Square(exponent))
	exponent = G.Must(G.HadamardProd(negativeHalf, exponent))
	exponent = G.Must(G.Sum(exponent, 1))

	// Σ log σ_j + (k/2) log 2π
	normalizer := G.Must(G.Sum(logStd))
	constant := G.NewConstant(dims * 0.5 * math.Log(2*math.Pi))
	normalizer = G.Must(G.Add(normalizer, constant))

	return G.Must(G.Sub(exponent, normalizer))
}

// pgLoss adds nodes to the graph of logProb computing the policy
// gradient loss -mean(logProb ⊙ advantages). The advantages node is
// an input to the graph and so is not differentiated through.
func pgLoss(logProb, advantages *G.Node) *G.Node {
	loss := G.Must(G.HadamardProd(logProb, advantages))
	loss = G.Must(G.Mean(loss))
	return G.Must(G.Neg(loss))
}
