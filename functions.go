package promql

// EnableExperimentalFunctions allows calling catalog entries marked as
// experimental. It must be set before the first Parse call.
var EnableExperimentalFunctions = false

// Function describes a built-in function signature.
type Function struct {
	Name       string
	ArgTypes   []ValueType
	ReturnType ValueType

	// Variadic controls the arguments of the last ArgType: 0 means the
	// signature is exact; otherwise the last argument may be omitted, a
	// positive value allows up to that many arguments of the last type,
	// and -1 allows any number of them.
	Variadic int

	// Experimental entries are rejected unless EnableExperimentalFunctions
	// is set.
	Experimental bool
}

// minArgs returns the minimal legal argument count for fn.
func (fn *Function) minArgs() int {
	if fn.Variadic == 0 {
		return len(fn.ArgTypes)
	}
	return len(fn.ArgTypes) - 1
}

// funcs is the catalog of built-in functions of Prometheus v2.45,
// keyed by the case-sensitive function name.
var funcs = map[string]*Function{
	"abs":                {Name: "abs", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"absent":             {Name: "absent", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"absent_over_time":   {Name: "absent_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"acos":               {Name: "acos", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"acosh":              {Name: "acosh", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"asin":               {Name: "asin", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"asinh":              {Name: "asinh", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"atan":               {Name: "atan", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"atanh":              {Name: "atanh", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"avg_over_time":      {Name: "avg_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"ceil":               {Name: "ceil", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"changes":            {Name: "changes", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"clamp":              {Name: "clamp", ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar, ValueTypeScalar}, ReturnType: ValueTypeVector},
	"clamp_max":          {Name: "clamp_max", ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar}, ReturnType: ValueTypeVector},
	"clamp_min":          {Name: "clamp_min", ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar}, ReturnType: ValueTypeVector},
	"cos":                {Name: "cos", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"cosh":               {Name: "cosh", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"count_over_time":    {Name: "count_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"day_of_month":       {Name: "day_of_month", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"day_of_week":        {Name: "day_of_week", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"day_of_year":        {Name: "day_of_year", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"days_in_month":      {Name: "days_in_month", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"deg":                {Name: "deg", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"delta":              {Name: "delta", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"deriv":              {Name: "deriv", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"exp":                {Name: "exp", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"floor":              {Name: "floor", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"histogram_count":    {Name: "histogram_count", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"histogram_fraction": {Name: "histogram_fraction", ArgTypes: []ValueType{ValueTypeScalar, ValueTypeScalar, ValueTypeVector}, ReturnType: ValueTypeVector},
	"histogram_quantile": {Name: "histogram_quantile", ArgTypes: []ValueType{ValueTypeScalar, ValueTypeVector}, ReturnType: ValueTypeVector},
	"histogram_sum":      {Name: "histogram_sum", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"holt_winters":       {Name: "holt_winters", ArgTypes: []ValueType{ValueTypeMatrix, ValueTypeScalar, ValueTypeScalar}, ReturnType: ValueTypeVector},
	"hour":               {Name: "hour", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"idelta":             {Name: "idelta", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"increase":           {Name: "increase", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"irate":              {Name: "irate", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"label_join":         {Name: "label_join", ArgTypes: []ValueType{ValueTypeVector, ValueTypeString, ValueTypeString, ValueTypeString}, Variadic: -1, ReturnType: ValueTypeVector},
	"label_replace":      {Name: "label_replace", ArgTypes: []ValueType{ValueTypeVector, ValueTypeString, ValueTypeString, ValueTypeString, ValueTypeString}, ReturnType: ValueTypeVector},
	"last_over_time":     {Name: "last_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"ln":                 {Name: "ln", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"log10":              {Name: "log10", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"log2":               {Name: "log2", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"mad_over_time":      {Name: "mad_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector, Experimental: true},
	"max_over_time":      {Name: "max_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"min_over_time":      {Name: "min_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"minute":             {Name: "minute", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"month":              {Name: "month", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
	"pi":                 {Name: "pi", ArgTypes: []ValueType{}, ReturnType: ValueTypeScalar},
	"predict_linear":     {Name: "predict_linear", ArgTypes: []ValueType{ValueTypeMatrix, ValueTypeScalar}, ReturnType: ValueTypeVector},
	"present_over_time":  {Name: "present_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"quantile_over_time": {Name: "quantile_over_time", ArgTypes: []ValueType{ValueTypeScalar, ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"rad":                {Name: "rad", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"rate":               {Name: "rate", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"resets":             {Name: "resets", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"round":              {Name: "round", ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar}, Variadic: 1, ReturnType: ValueTypeVector},
	"scalar":             {Name: "scalar", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeScalar},
	"sgn":                {Name: "sgn", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"sin":                {Name: "sin", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"sinh":               {Name: "sinh", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"sort":               {Name: "sort", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"sort_desc":          {Name: "sort_desc", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"sqrt":               {Name: "sqrt", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"stddev_over_time":   {Name: "stddev_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"stdvar_over_time":   {Name: "stdvar_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"sum_over_time":      {Name: "sum_over_time", ArgTypes: []ValueType{ValueTypeMatrix}, ReturnType: ValueTypeVector},
	"tan":                {Name: "tan", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"tanh":               {Name: "tanh", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"time":               {Name: "time", ArgTypes: []ValueType{}, ReturnType: ValueTypeScalar},
	"timestamp":          {Name: "timestamp", ArgTypes: []ValueType{ValueTypeVector}, ReturnType: ValueTypeVector},
	"vector":             {Name: "vector", ArgTypes: []ValueType{ValueTypeScalar}, ReturnType: ValueTypeVector},
	"year":               {Name: "year", ArgTypes: []ValueType{ValueTypeVector}, Variadic: 1, ReturnType: ValueTypeVector},
}

// GetFunction returns the catalog entry for the given name.
// Lookup is case-sensitive.
func GetFunction(name string) (*Function, bool) {
	fn, ok := funcs[name]
	return fn, ok
}
