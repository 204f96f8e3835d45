package main

import (
	"context"
	"fmt"
	"strconv"

	"pip-api/internal/geojson"
	"pip-api/internal/ingest"
	"pip-api/internal/migrate"
	"pip-api/internal/store"
	"pip-api/internal/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// openStore 读取 --env 指定的 dotenv 后连接数据库并确保表结构
func openStore(cmd *cobra.Command) (*store.Store, error) {
	if envFile, _ := cmd.Flags().GetString("env"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, err
		}
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return nil, err
	}
	if err := migrate.EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.AttachDB(db), nil
}

func polygonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "polygon",
		Short: "Maintain the stored polygon table",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "put <name> <file.geojson>",
			Short: "Insert or replace a named polygon",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openStore(cmd)
				if err != nil {
					return err
				}
				defer st.Close()
				rc := utils.OpenRedisFromEnv()
				if rc != nil {
					defer rc.Close()
				}
				return ingest.ImportFile(context.Background(), ingest.EvictOnSave(st, rc), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Print a stored polygon as GeoJSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openStore(cmd)
				if err != nil {
					return err
				}
				defer st.Close()
				p, err := st.LoadPolygon(context.Background(), args[0])
				if err != nil {
					return err
				}
				b, err := geojson.Shape{Vertices: p.Vertices, Splits: p.Splits}.Marshal()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			},
		},
		&cobra.Command{
			Use:   "del <name>",
			Short: "Delete a stored polygon",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := openStore(cmd)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.DeletePolygon(context.Background(), args[0]); err != nil {
					return err
				}
				if rc := utils.OpenRedisFromEnv(); rc != nil {
					defer rc.Close()
					_ = rc.Del(context.Background(), store.CacheKey(args[0])).Err()
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "list [limit]",
			Short: "List stored polygons, newest first",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				limit := 100
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return err
					}
					limit = n
				}
				st, err := openStore(cmd)
				if err != nil {
					return err
				}
				defer st.Close()
				items, err := st.ListPolygons(context.Background(), limit)
				if err != nil {
					return err
				}
				for _, it := range items {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tvertices=%d\trings=%d\t%s\n",
						it.Name, it.VertexCount, it.RingCount, it.UpdatedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			},
		},
	)
	return cmd
}
