package rategate

import "context"

// Guard runs op behind the gate, counting only failures that match the
// configured predicate.
//
// When the partition is over its limit (blocking mode), op is never invoked
// and Guard returns [ErrRateLimited]. Otherwise op runs; a nil result or an
// unmatched failure passes through untouched. A matched failure increments
// the partition's counter and is then returned unchanged: the increment
// completes (or is logged and given up on) strictly before the error
// propagates, so a follow-up read on the same partition within this call
// chain observes the count.
func (g *Gate) Guard(ctx context.Context, partition string, op func(context.Context) error) error {
	dec := g.Allow(ctx, partition)
	if dec.Blocked {
		return ErrRateLimited
	}

	err := op(ctx)
	if err == nil {
		return nil
	}
	if !g.matches(err) {
		return err
	}

	if count, incErr := g.Increment(ctx, partition); incErr != nil {
		g.metrics.inc(MetricStoreErrors)
		g.logger.Printf("rategate: error count increment failed for partition %q: %v", partition, incErr)
	} else {
		g.metrics.inc(MetricErrorsCounted)
		g.emitAudit(ctx, auditEventErrorCounted, partition, count, true, err)
	}

	return err
}

func (g *Gate) matches(err error) bool {
	if g.predicate == nil {
		return true
	}
	return g.predicate(err)
}
