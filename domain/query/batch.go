package query

// BatchRequest is a contiguous window into a session's result list.
type BatchRequest struct {
	offset int
	size   int
}

// NewBatchRequest creates a BatchRequest.
func NewBatchRequest(offset, size int) BatchRequest {
	return BatchRequest{offset: offset, size: size}
}

// Offset returns the zero-based start position.
func (b BatchRequest) Offset() int { return b.offset }

// Size returns the number of records requested.
func (b BatchRequest) Size() int { return b.size }

// End returns the exclusive end position.
func (b BatchRequest) End() int { return b.offset + b.size }

// Plan splits count results into batches of at most size records.
// It returns ceil(count/size) requests that cover [0, count) with no gaps
// or overlaps; the last one is clipped to the remainder.
func Plan(count, size int) []BatchRequest {
	if count <= 0 || size <= 0 {
		return nil
	}
	n := (count + size - 1) / size
	plan := make([]BatchRequest, 0, n)
	for offset := 0; offset < count; offset += size {
		plan = append(plan, NewBatchRequest(offset, min(size, count-offset)))
	}
	return plan
}
