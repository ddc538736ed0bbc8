package core

// infer.go classifies columns from their values.
//
// Non-string storage maps straight onto the lattice. String columns are
// sampled (first InferenceSampleSize non-missing values, in order) and run
// through the heuristics in precedence order: date_string, numeric_string,
// categorical, text.

// InferType returns the semantic type of a column.
func InferType(col *Column) SemanticType {
	if t, ok := nativeType(col.Storage()); ok {
		return t
	}
	s, ok := col.Data().(stringArray)
	if !ok {
		return TypeText
	}
	sample := sampleValues(s, missingMask(col.Data()), InferenceSampleSize)
	return classifySample(sample)
}

// InferTypes infers every column of f, in column order.
func InferTypes(f *Frame) *TypeMap {
	types := &TypeMap{}
	for _, col := range f.Columns() {
		types.Set(col.Name(), InferType(col))
	}
	return types
}

// sampleValues returns up to limit values not marked in missing, in order.
func sampleValues(arr stringArray, missing Mask, limit int) []string {
	present := arr.Len() - missing.Count()
	if present > limit {
		present = limit
	}
	out := make([]string, 0, present)
	for i := 0; i < arr.Len() && len(out) < limit; i++ {
		if missing.Get(i) {
			continue
		}
		out = append(out, arr.Value(i))
	}
	return out
}

func classifySample(sample []string) SemanticType {
	n := len(sample)
	if n == 0 {
		return TypeText
	}

	dates, numbers := 0, 0
	distinct := make(map[string]struct{})
	for _, v := range sample {
		if dateRegex.MatchString(v) {
			dates++
		}
		if parsesAsFloat(stripFormatting(v)) {
			numbers++
		}
		distinct[v] = struct{}{}
	}

	total := float64(n)
	switch {
	case float64(dates)/total >= DateMatchThreshold:
		return TypeDateString
	case float64(numbers)/total >= NumericParseThreshold:
		return TypeNumericString
	case float64(len(distinct))/total < CategoricalRatio && len(distinct) < CategoricalMaxUnique:
		return TypeCategorical
	default:
		return TypeText
	}
}
