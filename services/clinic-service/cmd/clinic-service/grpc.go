package main

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/tammy-rb/siri-cosmetics-server/libs/config"
	"github.com/tammy-rb/siri-cosmetics-server/libs/grpcx"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/grpcapi"
)

func startGrpcServer(ctx context.Context, logger *slog.Logger, avail grpcapi.Availability) error {
	port, err := config.Port("GRPC_PORT", "9090")
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv := grpcx.NewServer([]grpc.UnaryServerInterceptor{grpcx.UnaryServerLoggingInterceptor(logger)})
	grpcapi.Register(srv, avail)

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	return nil
}
