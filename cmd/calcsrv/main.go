// Command calcsrv serves calcengine.Evaluate over gRPC, giving the
// MCP-server-wrapper collaborator spec.md names as external a concrete
// process to run — a narrowed echo of the teacher's own cmd/server,
// which serves its SQL engine the same way (manual grpc.ServiceDesc,
// JSON codec, flag-based listen address).
package main

import (
	"context"
	"flag"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/planforge/calcengine"
	"github.com/planforge/calcengine/internal/rpcserver"
)

var flagGRPC = flag.String("grpc", ":9191", "gRPC listen address")

func main() {
	flag.Parse()

	rpcserver.RegisterEvaluator(func(ctx context.Context, m *calcengine.Model) error {
		return calcengine.Evaluate(ctx, m)
	})
	encoding.RegisterCodec(rpcserver.Codec())

	lis, err := net.Listen("tcp", *flagGRPC)
	if err != nil {
		log.Fatalf("calcsrv: listen: %v", err)
	}

	gs := grpc.NewServer()
	rpcserver.Register(gs, rpcserver.NewService())

	log.Printf("calcsrv: gRPC listening on %s", *flagGRPC)
	if err := gs.Serve(lis); err != nil {
		log.Fatalf("calcsrv: serve: %v", err)
	}
}
