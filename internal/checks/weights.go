package checks

const (
	totalWeight    = 100.0
	metadataWeight = 50.0
)

// Weights assigns a scoring weight to each check. Checks with a positive
// WeightHint keep their fixed share (metadata forensics claims half the
// total on its own, editor fingerprints in the producer fields being the
// single strongest tamper signal) and the remainder is split evenly across
// the rest, so the distribution stays valid as checks are added or removed.
func Weights(cs []Check) map[string]float64 {
	fixed := 0.0
	flexible := 0
	for _, c := range cs {
		if h := c.WeightHint(); h > 0 {
			fixed += h
		} else {
			flexible++
		}
	}

	each := 0.0
	if flexible > 0 && fixed < totalWeight {
		each = (totalWeight - fixed) / float64(flexible)
	}

	w := make(map[string]float64, len(cs))
	for _, c := range cs {
		if h := c.WeightHint(); h > 0 {
			w[c.Name()] = h
		} else {
			w[c.Name()] = each
		}
	}
	return w
}
