package resultcache

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kailas-cloud/flavorsearch/internal/domain/search/result"
)

const entryVersion = 1

type entry struct {
	Version     int          `msgpack:"v"`
	Tokens      []string     `msgpack:"t"`
	Corrections []correction `msgpack:"c"`
	IDs         []int        `msgpack:"i"`
	Scores      []float64    `msgpack:"s"`
}

type correction struct {
	From string `msgpack:"f"`
	To   string `msgpack:"o"`
}

func encodeRanking(r result.Ranking) ([]byte, error) {
	e := entry{
		Version: entryVersion,
		Tokens:  r.Tokens,
		IDs:     make([]int, len(r.Scored)),
		Scores:  make([]float64, len(r.Scored)),
	}
	for _, c := range r.Corrections {
		e.Corrections = append(e.Corrections, correction{From: c.From, To: c.To})
	}
	for i, s := range r.Scored {
		e.IDs[i] = s.ID
		e.Scores[i] = s.Score
	}
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("marshal ranking: %w", err)
	}
	return data, nil
}

func decodeRanking(data []byte) (result.Ranking, error) {
	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return result.Ranking{}, fmt.Errorf("unmarshal ranking: %w", err)
	}
	if e.Version != entryVersion {
		return result.Ranking{}, fmt.Errorf("unsupported cache entry version %d", e.Version)
	}
	if len(e.IDs) != len(e.Scores) {
		return result.Ranking{}, fmt.Errorf("corrupt cache entry: %d ids, %d scores", len(e.IDs), len(e.Scores))
	}

	r := result.Ranking{
		Tokens: e.Tokens,
		Scored: make([]result.Scored, len(e.IDs)),
	}
	for _, c := range e.Corrections {
		r.Corrections = append(r.Corrections, result.Correction{From: c.From, To: c.To})
	}
	for i := range e.IDs {
		r.Scored[i] = result.Scored{ID: e.IDs[i], Score: e.Scores[i]}
	}
	return r, nil
}
