package main

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"pip-api/internal/geojson"
	"pip-api/internal/logger"
	"pip-api/internal/pip"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	var polygonPath, pointsPath string
	var boundaryOutside, stats bool
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify CSV points (x,y per line) against a GeoJSON polygon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			shapeBytes, err := os.ReadFile(polygonPath)
			if err != nil {
				return errors.Wrap(err, "read polygon")
			}
			shape, err := geojson.Parse(shapeBytes)
			if err != nil {
				return err
			}
			in := io.Reader(os.Stdin)
			if pointsPath != "" && pointsPath != "-" {
				f, err := os.Open(pointsPath)
				if err != nil {
					return errors.Wrap(err, "open points")
				}
				defer f.Close()
				in = f
			}
			points, err := readPoints(in)
			if err != nil {
				return err
			}
			ix, err := pip.Compile(shape.Vertices, shape.Splits)
			if err != nil {
				return err
			}
			out, st := ix.ClassifyStats(points, !boundaryOutside)
			if stats {
				logger.Setup().Info("classify_done",
					"points", st.Points,
					"inside", st.Inside,
					"boundary", st.Boundary,
					"rejected", st.Rejected,
					"cache_hits", st.CacheHits,
					"cache_misses", st.CacheMisses,
				)
			}
			return writeResults(cmd.OutOrStdout(), points, out)
		},
	}
	cmd.Flags().StringVar(&polygonPath, "polygon", "", "GeoJSON polygon file")
	cmd.Flags().StringVar(&pointsPath, "points", "-", "CSV file of x,y rows (- for stdin)")
	cmd.Flags().BoolVar(&boundaryOutside, "boundary-outside", false, "treat points on an edge as outside")
	cmd.Flags().BoolVar(&stats, "stats", false, "log classification counters to stderr")
	_ = cmd.MarkFlagRequired("polygon")
	return cmd
}

// readPoints 每行 x,y；空行与 # 开头的行跳过
func readPoints(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	var pts []float64
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return pts, nil
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "points line %d", line)
		}
		if len(rec) < 2 {
			return nil, errors.Errorf("points line %d: want x,y", line)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "points line %d", line)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "points line %d", line)
		}
		pts = append(pts, x, y)
	}
}

func writeResults(w io.Writer, points []float64, flags []uint32) error {
	cw := csv.NewWriter(w)
	for i, f := range flags {
		rec := []string{
			strconv.FormatFloat(points[2*i], 'g', -1, 64),
			strconv.FormatFloat(points[2*i+1], 'g', -1, 64),
			strconv.FormatUint(uint64(f), 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
