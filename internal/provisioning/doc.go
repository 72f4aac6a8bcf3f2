// Package provisioning converges a benchmark environment onto AWS.
//
// The environment is built in three sequential phases:
//   - network: VPC, subnets, gateways, routing, and the database
//     security group
//   - database: the Neptune graph cluster and its serverless instance
//   - search: the OpenSearch vector domain
//
// Every phase is idempotent. Each Ensure operation first looks for the
// resource it owns, reuses and repairs what it finds, and only creates
// what is missing. Running a phase twice against a converged environment
// issues no mutating calls. Teardown reverses the dependency order and
// treats already-deleted resources as success.
package provisioning
