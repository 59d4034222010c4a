package env

import (
	set "github.com/hashicorp/go-set/v3"

	"github.com/nissy-dev/stc/pkg/types"
)

// buildLib declares the selected standard library sets. Later sets add
// members to interfaces declared by earlier ones, so the member lists are
// assembled per interface with the set checks inline.
func buildLib(b *libBuilder, libs *set.Set[string]) {
	in := b.in
	es2015 := libs.Contains("es2015")
	es2017 := libs.Contains("es2017")
	es2019 := libs.Contains("es2019")

	anyArray := in.Array(types.Any)
	stringArray := in.Array(types.String)

	objectDecl, _ := b.iface("Object")
	b.body(objectDecl,
		b.method("toString", sig(types.String)),
		b.method("valueOf", sig(in.Ref(objectDecl))),
		b.method("hasOwnProperty", sig(types.Boolean, param("v", types.String))),
	)

	functionDecl, _ := b.iface("Function")
	b.body(functionDecl,
		b.method("apply", sig(types.Any, param("thisArg", types.Any), optParam("args", types.Any))),
		b.method("call", sig(types.Any, param("thisArg", types.Any), restParam("args", anyArray))),
		b.method("bind", sig(types.Any, param("thisArg", types.Any), restParam("args", anyArray))),
		roProp("length", types.Number),
		roProp("name", types.String),
	)

	stringDecl, _ := b.iface("String")
	stringProps := []types.Property{
		roProp("length", types.Number),
		b.method("charAt", sig(types.String, param("pos", types.Number))),
		b.method("charCodeAt", sig(types.Number, param("index", types.Number))),
		b.method("concat", sig(types.String, restParam("strings", stringArray))),
		b.method("indexOf", sig(types.Number, param("searchString", types.String), optParam("position", types.Number))),
		b.method("lastIndexOf", sig(types.Number, param("searchString", types.String), optParam("position", types.Number))),
		b.method("slice", sig(types.String, optParam("start", types.Number), optParam("end", types.Number))),
		b.method("substring", sig(types.String, param("start", types.Number), optParam("end", types.Number))),
		b.method("toLowerCase", sig(types.String)),
		b.method("toUpperCase", sig(types.String)),
		b.method("trim", sig(types.String)),
		b.method("split", sig(stringArray, param("separator", types.String), optParam("limit", types.Number))),
		b.method("replace", sig(types.String, param("searchValue", types.String), param("replaceValue", types.String))),
		b.method("toString", sig(types.String)),
		b.method("valueOf", sig(types.String)),
	}
	if es2015 {
		stringProps = append(stringProps,
			b.method("startsWith", sig(types.Boolean, param("searchString", types.String), optParam("position", types.Number))),
			b.method("endsWith", sig(types.Boolean, param("searchString", types.String), optParam("endPosition", types.Number))),
			b.method("includes", sig(types.Boolean, param("searchString", types.String), optParam("position", types.Number))),
			b.method("repeat", sig(types.String, param("count", types.Number))),
		)
	}
	if es2017 {
		stringProps = append(stringProps,
			b.method("padStart", sig(types.String, param("maxLength", types.Number), optParam("fillString", types.String))),
			b.method("padEnd", sig(types.String, param("maxLength", types.Number), optParam("fillString", types.String))),
		)
	}
	if es2019 {
		stringProps = append(stringProps,
			b.method("trimStart", sig(types.String)),
			b.method("trimEnd", sig(types.String)),
		)
	}
	stringDecl.SetBody(in.Object(types.ObjectShape{
		Props: stringProps,
		Index: []types.IndexInfo{{Key: types.Number, Type: types.String, Readonly: true}},
	}))

	numberDecl, _ := b.iface("Number")
	b.body(numberDecl,
		b.method("toFixed", sig(types.String, optParam("fractionDigits", types.Number))),
		b.method("toPrecision", sig(types.String, optParam("precision", types.Number))),
		b.method("toString", sig(types.String, optParam("radix", types.Number))),
		b.method("valueOf", sig(types.Number)),
	)

	booleanDecl, _ := b.iface("Boolean")
	b.body(booleanDecl, b.method("valueOf", sig(types.Boolean)))

	bigintDecl, _ := b.iface("BigInt")
	b.body(bigintDecl,
		b.method("toString", sig(types.String, optParam("radix", types.Number))),
		b.method("valueOf", sig(types.BigInt)),
	)

	arrayDecl, arrayTPs := b.iface("Array", "T")
	roArrayDecl, roTPs := b.iface("ReadonlyArray", "T")
	arrayDecl.SetBody(arrayBody(b, arrayTPs[0], false, libs))
	roArrayDecl.SetBody(arrayBody(b, roTPs[0], true, libs))

	errorDecl, _ := b.iface("Error")
	b.body(errorDecl,
		prop("name", types.String),
		prop("message", types.String),
		types.Property{Name: "stack", Type: types.String, Optional: true},
	)
	errorRef := in.Ref(errorDecl)
	b.value("Error", in.Object(types.ObjectShape{
		Props:      []types.Property{roProp("prototype", errorRef)},
		Calls:      []*types.Signature{sig(errorRef, optParam("message", types.String))},
		Constructs: []*types.Signature{sig(errorRef, optParam("message", types.String))},
	}))

	dateDecl, _ := b.iface("Date")
	b.body(dateDecl,
		b.method("getTime", sig(types.Number)),
		b.method("toISOString", sig(types.String)),
		b.method("toString", sig(types.String)),
	)
	dateRef := in.Ref(dateDecl)
	b.value("Date", in.Object(types.ObjectShape{
		Props:      []types.Property{b.method("now", sig(types.Number))},
		Calls:      []*types.Signature{sig(types.String)},
		Constructs: []*types.Signature{sig(dateRef), sig(dateRef, param("value", in.Union(types.Number, types.String)))},
	}))

	b.value("Math", b.object(
		roProp("PI", types.Number),
		roProp("E", types.Number),
		b.method("abs", sig(types.Number, param("x", types.Number))),
		b.method("ceil", sig(types.Number, param("x", types.Number))),
		b.method("floor", sig(types.Number, param("x", types.Number))),
		b.method("round", sig(types.Number, param("x", types.Number))),
		b.method("sqrt", sig(types.Number, param("x", types.Number))),
		b.method("pow", sig(types.Number, param("x", types.Number), param("y", types.Number))),
		b.method("max", sig(types.Number, restParam("values", in.Array(types.Number)))),
		b.method("min", sig(types.Number, restParam("values", in.Array(types.Number)))),
		b.method("random", sig(types.Number)),
	))
	b.value("JSON", b.object(
		b.method("parse", sig(types.Any, param("text", types.String))),
		b.method("stringify", sig(types.String, param("value", types.Any))),
	))
	b.value("parseInt", b.fn(sig(types.Number, param("string", types.String), optParam("radix", types.Number))))
	b.value("parseFloat", b.fn(sig(types.Number, param("string", types.String))))
	b.value("isNaN", b.fn(sig(types.Boolean, param("number", types.Number))))
	b.value("NaN", types.Number)
	b.value("Infinity", types.Number)
	b.value("undefined", types.Undefined)

	b.value("String", in.Object(types.ObjectShape{
		Props: []types.Property{b.method("fromCharCode", sig(types.String, restParam("codes", in.Array(types.Number))))},
		Calls: []*types.Signature{sig(types.String, optParam("value", types.Any))},
	}))
	numberStatics := []types.Property{roProp("MAX_VALUE", types.Number), roProp("MIN_VALUE", types.Number)}
	if es2015 {
		numberStatics = append(numberStatics,
			roProp("MAX_SAFE_INTEGER", types.Number),
			b.method("isInteger", sig(types.Boolean, param("number", types.Unknown))),
		)
	}
	b.value("Number", in.Object(types.ObjectShape{
		Props: numberStatics,
		Calls: []*types.Signature{sig(types.Number, optParam("value", types.Any))},
	}))
	boolT := in.NewTypeParam("T")
	b.value("Boolean", in.Object(types.ObjectShape{
		Calls: []*types.Signature{gsig([]*types.TypeParam{boolT}, types.Boolean, optParam("value", boolT))},
	}))

	objT := in.NewTypeParam("T")
	assignT, assignU := in.NewTypeParam("T"), in.NewTypeParam("U")
	objectStatics := []types.Property{
		b.method("keys", sig(stringArray, param("o", types.NonPrimitive))),
		b.method("create", sig(types.Any, param("o", in.Union(types.NonPrimitive, types.Null)))),
		b.method("assign", gsig([]*types.TypeParam{assignT, assignU}, in.Intersection(assignT, assignU), param("target", assignT), param("source", assignU))),
	}
	if es2017 {
		objectStatics = append(objectStatics,
			b.method("values", sig(anyArray, param("o", types.Any))),
			b.method("entries", sig(in.Array(in.TupleOf(types.String, types.Any)), param("o", types.Any))),
		)
	}
	if es2019 {
		objectStatics = append(objectStatics,
			b.method("fromEntries", sig(types.Any, param("entries", anyArray))),
		)
	}

	arrayCtorT := in.NewTypeParam("T")
	arrayStatics := []types.Property{
		b.method("isArray", &types.Signature{
			Params:    []types.Param{param("arg", types.Any)},
			Return:    types.Boolean,
			Predicate: &types.Predicate{ParamIndex: 0, ParamName: "arg", Type: anyArray},
		}),
	}
	if es2015 {
		fromT := in.NewTypeParam("T")
		arrayStatics = append(arrayStatics,
			b.method("from", gsig([]*types.TypeParam{fromT}, in.Array(fromT), param("iterable", in.Ref(roArrayDecl, fromT)))),
		)
	}
	b.value("Array", in.Object(types.ObjectShape{
		Props:      arrayStatics,
		Constructs: []*types.Signature{gsig([]*types.TypeParam{arrayCtorT}, in.Array(arrayCtorT), optParam("arrayLength", types.Number))},
	}))

	aliases(b)

	if es2015 {
		es2015Decls(b)
	}
	if libs.Contains("dom") {
		b.value("console", b.object(
			b.method("log", sig(types.Void, restParam("data", anyArray))),
			b.method("error", sig(types.Void, restParam("data", anyArray))),
			b.method("warn", sig(types.Void, restParam("data", anyArray))),
			b.method("info", sig(types.Void, restParam("data", anyArray))),
		))
		b.value("setTimeout", b.fn(sig(types.Number, param("handler", b.fn(sig(types.Void))), optParam("timeout", types.Number))))
		b.value("clearTimeout", b.fn(sig(types.Void, optParam("id", types.Number))))
	}

	objectFreeze := b.method("freeze", gsig([]*types.TypeParam{objT}, in.Ref(b.decls["Readonly"], objT), param("o", objT)))
	objectStatics = append(objectStatics, objectFreeze)
	b.value("Object", in.Object(types.ObjectShape{
		Props:      objectStatics,
		Calls:      []*types.Signature{sig(types.Any, optParam("value", types.Any))},
		Constructs: []*types.Signature{sig(types.Any, optParam("value", types.Any))},
	}))
}

// arrayBody builds the members of Array<T> or ReadonlyArray<T>.
func arrayBody(b *libBuilder, t *types.TypeParam, readonly bool, libs *set.Set[string]) types.Type {
	in := b.in
	self := types.Type(in.Array(t))
	if readonly {
		self = in.ReadonlyArray(t)
	}
	mutable := in.Array(t)
	callback := func(ret types.Type) types.Type {
		return in.Function(sig(ret, param("value", t), param("index", types.Number), param("array", self)))
	}

	u := in.NewTypeParam("U")
	s := in.NewTypeParam("S")
	s.Constraint = t
	r := in.NewTypeParam("U")
	guard := in.Function(&types.Signature{
		Params:    []types.Param{param("value", t), param("index", types.Number), param("array", self)},
		Return:    types.Boolean,
		Predicate: &types.Predicate{ParamIndex: 0, ParamName: "value", Type: s},
	})

	props := []types.Property{
		{Name: "length", Type: types.Number, Readonly: readonly},
		b.method("concat", sig(mutable, restParam("items", in.Array(in.Union(t, in.Array(t)))))),
		b.method("join", sig(types.String, optParam("separator", types.String))),
		b.method("slice", sig(mutable, optParam("start", types.Number), optParam("end", types.Number))),
		b.method("indexOf", sig(types.Number, param("searchElement", t), optParam("fromIndex", types.Number))),
		b.method("every", sig(types.Boolean, param("predicate", callback(types.Unknown)))),
		b.method("some", sig(types.Boolean, param("predicate", callback(types.Unknown)))),
		b.method("forEach", sig(types.Void, param("callbackfn", callback(types.Void)))),
		b.method("map", gsig([]*types.TypeParam{u}, in.Array(u), param("callbackfn", callback(u)))),
		b.method("filter",
			gsig([]*types.TypeParam{s}, in.Array(s), param("predicate", guard)),
			sig(mutable, param("predicate", callback(types.Unknown))),
		),
		b.method("reduce",
			sig(t, param("callbackfn", in.Function(sig(t, param("previousValue", t), param("currentValue", t), param("currentIndex", types.Number), param("array", self))))),
			gsig([]*types.TypeParam{r}, r,
				param("callbackfn", in.Function(sig(r, param("previousValue", r), param("currentValue", t), param("currentIndex", types.Number), param("array", self)))),
				param("initialValue", r)),
		),
	}
	if !readonly {
		props = append(props,
			b.method("push", sig(types.Number, restParam("items", mutable))),
			b.method("pop", sig(in.Union(t, types.Undefined))),
			b.method("shift", sig(in.Union(t, types.Undefined))),
			b.method("unshift", sig(types.Number, restParam("items", mutable))),
			b.method("reverse", sig(mutable)),
			b.method("sort", sig(mutable, optParam("compareFn", in.Function(sig(types.Number, param("a", t), param("b", t)))))),
			b.method("splice", sig(mutable, param("start", types.Number), optParam("deleteCount", types.Number), restParam("items", mutable))),
		)
	}
	if libs.Contains("es2015") {
		props = append(props,
			b.method("find", sig(in.Union(t, types.Undefined), param("predicate", callback(types.Unknown)))),
			b.method("findIndex", sig(types.Number, param("predicate", callback(types.Unknown)))),
		)
		if !readonly {
			props = append(props,
				b.method("fill", sig(mutable, param("value", t), optParam("start", types.Number), optParam("end", types.Number))),
			)
		}
	}
	if libs.Contains("es2016") {
		props = append(props,
			b.method("includes", sig(types.Boolean, param("searchElement", t), optParam("fromIndex", types.Number))),
		)
	}
	return in.Object(types.ObjectShape{
		Props: props,
		Index: []types.IndexInfo{{Key: types.Number, Type: t, Readonly: readonly}},
	})
}

// aliases declares the utility type aliases.
func aliases(b *libBuilder) {
	in := b.in
	propertyKey := in.Union(types.String, types.Number, types.Symbol)
	b.alias("PropertyKey", nil, func([]*types.TypeParam) types.Type { return propertyKey })

	homomorphic := func(name string, optional, readonly types.Modifier) {
		b.alias(name, []string{"T"}, func(tps []*types.TypeParam) types.Type {
			p := in.NewTypeParam("P")
			return in.Mapped(p, in.KeyOf(tps[0]), in.Indexed(tps[0], p), optional, readonly)
		})
	}
	homomorphic("Partial", types.ModAdd, types.ModNone)
	homomorphic("Required", types.ModRemove, types.ModNone)
	homomorphic("Readonly", types.ModNone, types.ModAdd)

	b.alias("Pick", []string{"T", "K"}, func(tps []*types.TypeParam) types.Type {
		tps[1].Constraint = in.KeyOf(tps[0])
		p := in.NewTypeParam("P")
		return in.Mapped(p, tps[1], in.Indexed(tps[0], p), types.ModNone, types.ModNone)
	})
	b.alias("Record", []string{"K", "T"}, func(tps []*types.TypeParam) types.Type {
		tps[0].Constraint = propertyKey
		p := in.NewTypeParam("P")
		return in.Mapped(p, tps[0], tps[1], types.ModNone, types.ModNone)
	})
	b.alias("Exclude", []string{"T", "U"}, func(tps []*types.TypeParam) types.Type {
		return in.Conditional(tps[0], tps[1], types.Never, tps[0], nil, true)
	})
	b.alias("Extract", []string{"T", "U"}, func(tps []*types.TypeParam) types.Type {
		return in.Conditional(tps[0], tps[1], tps[0], types.Never, nil, true)
	})
	b.alias("Omit", []string{"T", "K"}, func(tps []*types.TypeParam) types.Type {
		tps[1].Constraint = propertyKey
		keys := in.Conditional(in.KeyOf(tps[0]), tps[1], types.Never, in.KeyOf(tps[0]), nil, true)
		p := in.NewTypeParam("P")
		return in.Mapped(p, keys, in.Indexed(tps[0], p), types.ModNone, types.ModNone)
	})
	b.alias("NonNullable", []string{"T"}, func(tps []*types.TypeParam) types.Type {
		return in.Conditional(tps[0], in.Union(types.Null, types.Undefined), types.Never, tps[0], nil, true)
	})
	anyFn := in.Function(sig(types.Any, restParam("args", types.Any)))
	b.alias("ReturnType", []string{"T"}, func(tps []*types.TypeParam) types.Type {
		tps[0].Constraint = anyFn
		r := in.NewTypeParam("R")
		r.Infer = true
		ext := in.Function(sig(r, restParam("args", types.Any)))
		return in.Conditional(tps[0], ext, r, types.Any, []*types.TypeParam{r}, true)
	})
	b.alias("Parameters", []string{"T"}, func(tps []*types.TypeParam) types.Type {
		tps[0].Constraint = anyFn
		p := in.NewTypeParam("P")
		p.Infer = true
		ext := in.Function(sig(types.Any, restParam("args", p)))
		return in.Conditional(tps[0], ext, p, types.Never, []*types.TypeParam{p}, true)
	})
}

// es2015Decls declares Promise, Map, Set and Symbol.
func es2015Decls(b *libBuilder) {
	in := b.in

	promiseDecl, promiseTPs := b.iface("Promise", "T")
	pt := promiseTPs[0]
	thenU := in.NewTypeParam("U")
	b.body(promiseDecl,
		b.method("then", gsig([]*types.TypeParam{thenU}, in.Ref(promiseDecl, thenU),
			param("onfulfilled", in.Function(sig(thenU, param("value", pt)))))),
		b.method("catch", sig(in.Ref(promiseDecl, pt), param("onrejected", in.Function(sig(pt, param("reason", types.Any)))))),
		b.method("finally", sig(in.Ref(promiseDecl, pt), optParam("onfinally", in.Function(sig(types.Void))))),
	)
	newT, resolveT, allT := in.NewTypeParam("T"), in.NewTypeParam("T"), in.NewTypeParam("T")
	executor := in.Function(sig(types.Void,
		param("resolve", in.Function(sig(types.Void, param("value", newT)))),
		param("reject", in.Function(sig(types.Void, optParam("reason", types.Any)))),
	))
	b.value("Promise", in.Object(types.ObjectShape{
		Props: []types.Property{
			b.method("resolve", gsig([]*types.TypeParam{resolveT}, in.Ref(promiseDecl, resolveT), param("value", resolveT))),
			b.method("reject", sig(in.Ref(promiseDecl, types.Never), optParam("reason", types.Any))),
			b.method("all", gsig([]*types.TypeParam{allT}, in.Ref(promiseDecl, in.Array(allT)), param("values", in.Array(allT)))),
		},
		Constructs: []*types.Signature{gsig([]*types.TypeParam{newT}, in.Ref(promiseDecl, newT), param("executor", executor))},
	}))

	mapDecl, mapTPs := b.iface("Map", "K", "V")
	k, v := mapTPs[0], mapTPs[1]
	b.body(mapDecl,
		b.method("get", sig(in.Union(v, types.Undefined), param("key", k))),
		b.method("set", sig(in.Ref(mapDecl, k, v), param("key", k), param("value", v))),
		b.method("has", sig(types.Boolean, param("key", k))),
		b.method("delete", sig(types.Boolean, param("key", k))),
		b.method("clear", sig(types.Void)),
		b.method("forEach", sig(types.Void, param("callbackfn", in.Function(sig(types.Void, param("value", v), param("key", k)))))),
		roProp("size", types.Number),
	)
	newK, newV := in.NewTypeParam("K"), in.NewTypeParam("V")
	b.value("Map", in.Object(types.ObjectShape{
		Constructs: []*types.Signature{gsig([]*types.TypeParam{newK, newV}, in.Ref(mapDecl, newK, newV))},
	}))

	setDecl, setTPs := b.iface("Set", "T")
	st := setTPs[0]
	b.body(setDecl,
		b.method("add", sig(in.Ref(setDecl, st), param("value", st))),
		b.method("has", sig(types.Boolean, param("value", st))),
		b.method("delete", sig(types.Boolean, param("value", st))),
		b.method("clear", sig(types.Void)),
		b.method("forEach", sig(types.Void, param("callbackfn", in.Function(sig(types.Void, param("value", st)))))),
		roProp("size", types.Number),
	)
	newS := in.NewTypeParam("T")
	b.value("Set", in.Object(types.ObjectShape{
		Constructs: []*types.Signature{gsig([]*types.TypeParam{newS}, in.Ref(setDecl, newS), optParam("values", in.Array(newS)))},
	}))

	symbolDecl, _ := b.iface("Symbol")
	b.body(symbolDecl,
		roProp("description", in.Union(types.String, types.Undefined)),
		b.method("toString", sig(types.String)),
	)
	b.value("Symbol", b.fn(sig(types.Symbol, optParam("description", types.String))))
}
