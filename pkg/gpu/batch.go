package gpu

// DefaultDispatchBudget bounds pixels x samples x bounces per dispatch. It is a
// device tuning knob found by experiment; lower it if dispatches time out.
const DefaultDispatchBudget = 1024 * 10000

// Batch is one dispatch: a contiguous run of pixels in pixel-major order
type Batch struct {
	StartPixel int
	NumPixels  int
}

// PixelsPerDispatch returns how many pixels fit in one dispatch under budget
func PixelsPerDispatch(samples, bounces, budget int) int {
	samples = max(samples, 1)
	bounces = max(bounces, 1)
	return max(1, budget/bounces/samples)
}

// PlanBatches splits totalPixels into sequential batches of PixelsPerDispatch
// pixels, the last one possibly shorter
func PlanBatches(totalPixels, samples, bounces, budget int) []Batch {
	if totalPixels <= 0 {
		return nil
	}
	perDispatch := PixelsPerDispatch(samples, bounces, budget)

	batches := make([]Batch, 0, (totalPixels+perDispatch-1)/perDispatch)
	for start := 0; start < totalPixels; start += perDispatch {
		batches = append(batches, Batch{
			StartPixel: start,
			NumPixels:  min(perDispatch, totalPixels-start),
		})
	}
	return batches
}
