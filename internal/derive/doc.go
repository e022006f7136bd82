// Package derive turns the fragments of a derived repository method into a
// criteria tree.
//
// The repository layer decomposes a method such as
//
//	findByMessageAndIdLessThanOrTestValueIsNull(msg, id)
//
// into a PartTree of classified fragments. A Creator maps each fragment type
// to a criteria kind through a fixed table, draining the fragment's arguments
// in order, and folds the results: AND within an or-group, OR across groups.
//
// TRUE and FALSE fragments ("ByActiveTrue") consume no arguments and bind a
// literal boolean to an EQUAL leaf.
package derive
