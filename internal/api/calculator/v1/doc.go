// Package calculatorv1 defines the tally.calculator.v1 gRPC contract.
//
// Messages travel as google.protobuf.Struct values. The typed request and
// response structs in this package are converted to and from Struct through
// their JSON field names, so any gRPC client able to build a Struct can call
// the service. api/proto/tally/calculator/v1/calculator.proto declares the
// service and the field names of each payload.
package calculatorv1
