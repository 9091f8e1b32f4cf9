// Package contract carries the metadata agents publish about themselves:
// which topics an operation subscribes to, which topics it may emit, and the
// JSON Schemas of the payloads involved.
//
// Contracts are documentation and tooling input, nothing more. The bus never
// consults them: no payload is validated at publish time, no delivery is
// blocked by a schema. Their value is at the edges of the development loop,
// where BuildManifest and Lint turn the declared topology into docs and into
// findings about drift between what agents declare and what is actually
// wired.
//
// Schemas are reflected from Go types exactly once, when the Operation is
// constructed:
//
//	var CreateWelcomeTask = contract.Must("CreateWelcomeTask",
//		contract.Description("Buffers a welcome task for every new user."),
//		contract.On("/Auth/UserRegistered"),
//		contract.Emits("/Tasks/Created"),
//		contract.Input[topics.UserRegistered](),
//		contract.Output[topics.TaskCreated](),
//	)
package contract
