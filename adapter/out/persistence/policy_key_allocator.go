package persistence

import "easyncd/pkg/snowflake"

// PolicyKeyAllocator is the process-wide PolicyKey source (spec §4.3),
// backed by the snowflake generator. It returns the low 32 bits of a
// snowflake id (the low 10 timestamp bits, the worker id and the
// sequence), retrying when those bits are 0, the reserved "unset" value.
// The truncation drops the higher timestamp bits, so keys are not
// monotonic and are not guaranteed unique: the low timestamp bits wrap
// every 1024 ms.
type PolicyKeyAllocator struct {
	gen *snowflake.Generator
}

func NewPolicyKeyAllocator(workerID int64) (*PolicyKeyAllocator, error) {
	gen, err := snowflake.NewGenerator(workerID)
	if err != nil {
		return nil, err
	}
	return &PolicyKeyAllocator{gen: gen}, nil
}

func (a *PolicyKeyAllocator) Next() uint32 {
	for {
		id := a.gen.MustGenerate()
		if key := uint32(id); key != 0 {
			return key
		}
	}
}
