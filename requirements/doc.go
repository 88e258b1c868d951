// Package requirements turns the free-text exam requirements of an admission
// plan into qualification variants and evaluates candidate scores against them.
//
// A requirement text is a ";"-separated list of clauses. A clause is either a
// mandatory "Subject - score" pair or a "/"-separated group of alternatives,
// exactly one of which has to be met:
//
//	Русский язык - 40; Математика - 39 / Информатика - 44
//
// expands to two variants, {Русский язык 40, Математика 39} and
// {Русский язык 40, Информатика 44}. A candidate qualifies when any variant is
// fully satisfied.
package requirements
