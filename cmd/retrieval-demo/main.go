// Command retrieval-demo runs one in-process two-party top-1 retrieval
// over a small set of documents with random feature vectors, printing the
// winning index once both parties' shares have been combined.
//
// Usage: retrieval-demo [n]
// n is the number of documents to generate (default 8).
package main

import (
	"io"
	"log"
	"os"
	"strconv"

	"dcf-retrieval/group"
	"dcf-retrieval/prg"
	"dcf-retrieval/retrieval"
)

// featureDim is the dimension of the query/document vectors the score
// phase dots together. featureValueBound bounds each feature value so the
// resulting score stays well inside scoreWidth's resolution.
const (
	featureDim        = 4
	featureValueBound = 10
	scoreWidth        = 8
)

func main() {
	logger := log.New(os.Stderr, "", 0)

	n := 8
	if len(os.Args) > 1 {
		v, err := strconv.Atoi(os.Args[1])
		if err != nil || v <= 0 {
			logger.Fatalf("retrieval-demo: invalid document count %q", os.Args[1])
		}
		n = v
	}

	ctx, err := prg.NewContext(group.Lambda)
	if err != nil {
		logger.Fatalf("retrieval-demo: %v", err)
	}
	csprng, err := prg.CSPRNG()
	if err != nil {
		logger.Fatalf("retrieval-demo: %v", err)
	}

	// The query is the all-ones vector, so each document's score is just
	// the sum of its feature values.
	query := make([]uint64, featureDim)
	for k := range query {
		query[k] = 1
	}
	queryShare0, queryShare1, err := splitVector(csprng, query)
	if err != nil {
		logger.Fatalf("retrieval-demo: %v", err)
	}

	party0 := retrieval.Party{ID: 0, Query: queryShare0, Docs: make([][]group.Element, n)}
	party1 := retrieval.Party{ID: 1, Query: queryShare1, Docs: make([][]group.Element, n)}
	for j := 0; j < n; j++ {
		features := make([]uint64, featureDim)
		for k := range features {
			v, err := randomBoundedValue(csprng, featureValueBound)
			if err != nil {
				logger.Fatalf("retrieval-demo: %v", err)
			}
			features[k] = v
		}
		doc0, doc1, err := splitVector(csprng, features)
		if err != nil {
			logger.Fatalf("retrieval-demo: %v", err)
		}
		party0.Docs[j] = doc0
		party1.Docs[j] = doc1
	}

	session, err := retrieval.NewSession(ctx, csprng, scoreWidth)
	if err != nil {
		logger.Fatalf("retrieval-demo: %v", err)
	}

	rounds := retrieval.RoundsFor(n)
	logger.Printf("retrieval-demo: %d documents, %d comparison rounds", n, rounds)

	winner, share0, share1, err := session.Top1(party0, party1)
	if err != nil {
		logger.Fatalf("retrieval-demo: top1: %v", err)
	}

	winningScore := group.Add(share0, share1).Uint64()
	logger.Printf("retrieval-demo: winning document %d, score %d", winner, winningScore)
}

func randomBoundedValue(csprng io.Reader, bound uint64) (uint64, error) {
	seed, err := prg.RandomSeed(csprng, group.Lambda)
	if err != nil {
		return 0, err
	}
	return uint64(seed[0]) % bound, nil
}

func splitVector(csprng io.Reader, values []uint64) (share0, share1 []group.Element, err error) {
	share0 = make([]group.Element, len(values))
	share1 = make([]group.Element, len(values))
	for i, v := range values {
		seed, err := prg.RandomSeed(csprng, group.Lambda)
		if err != nil {
			return nil, nil, err
		}
		s0, err := group.FromBytes(seed)
		if err != nil {
			return nil, nil, err
		}
		share0[i] = s0
		share1[i] = group.Sub(group.FromUint64(v), s0)
	}
	return share0, share1, nil
}
