// Package ipc provides a machine-readable MessagePack emission mode for a
// completed clustering run, for editor/tooling integrations that want
// structured output instead of the human-readable emitter text.
package ipc

import (
	"io"
	"time"

	"github.com/bastiangx/logclust/internal/pipeline"
	"github.com/vmihailenco/msgpack/v5"
)

// ClusterRecord is one rendered cluster: either a plain candidate or a
// joined candidate, distinguished by Joined.
type ClusterRecord struct {
	Pattern string `msgpack:"p"`
	Support int    `msgpack:"s"`
	K       int    `msgpack:"k"`
	Joined  bool   `msgpack:"j"`
}

// DumpResponse is the single-shot response for one run, mirroring the
// teacher's CompletionResponse shape (id/suggestions/count/time) but for
// clusters instead of completions.
type DumpResponse struct {
	Clusters []ClusterRecord `msgpack:"clusters"`
	Count    int             `msgpack:"count"`
	ElapsedUs int64          `msgpack:"elapsed_us"`
}

// Dump encodes every surviving candidate and joined candidate from result
// as a single MessagePack document written to w. This is a one-shot
// request/response emission at the end of a run, not a persistent server.
func Dump(w io.Writer, emitter *pipeline.Emitter, result *pipeline.Result) error {
	start := time.Now()

	var records []ClusterRecord
	result.Family.All(func(c *pipeline.Candidate) {
		if c.JoinedFlag {
			return
		}
		records = append(records, ClusterRecord{
			Pattern: emitter.RenderCandidate(c),
			Support: c.Count,
			K:       len(c.Constants),
		})
	})
	for _, jc := range result.Joined {
		records = append(records, ClusterRecord{
			Pattern: emitter.RenderJoined(jc),
			Support: jc.Count,
			K:       jc.K,
			Joined:  true,
		})
	}

	resp := &DumpResponse{
		Clusters:  records,
		Count:     len(records),
		ElapsedUs: time.Since(start).Microseconds(),
	}

	encoder := msgpack.NewEncoder(w)
	return encoder.Encode(resp)
}
