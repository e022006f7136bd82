// Package repository answers derived queries declared on an entity.
//
// A Repository resolves each declared method into a derive.PartTree once,
// then per call drains the arguments into a criteria tree, compiles it with
// the entity's id field and hands the statement to an Executor:
//
//	repo, err := repository.New(entity, st)
//	docs, err := repo.Find(ctx, "findByMessageContaining", "hello")
package repository
