// 包 ingest：GeoJSON 多边形导入（本地文件、目录、远程地址），作为离线数据通道
package ingest

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pip-api/internal/geojson"
	"pip-api/internal/logger"
	"pip-api/internal/store"

	"github.com/pkg/errors"
)

// Saver 导入目标；*store.Store 满足该接口
type Saver interface {
	SavePolygon(ctx context.Context, p *store.Polygon) error
}

const maxSourceBytes = 256 << 20

// Import 解析 GeoJSON 字节并以 name 写入
func Import(ctx context.Context, st Saver, name string, data []byte) error {
	s, err := geojson.Parse(data)
	if err != nil {
		return errors.Wrapf(err, "parse %s", name)
	}
	p := &store.Polygon{Name: name, Vertices: s.Vertices, Splits: s.Splits}
	if err := st.SavePolygon(ctx, p); err != nil {
		return errors.Wrapf(err, "save %s", name)
	}
	logger.L().Info("ingest_polygon", "name", name, "vertices", len(s.Vertices)/2, "rings", p.RingCount())
	return nil
}

// ImportFile name 为空时取文件名（去扩展名）
func ImportFile(ctx context.Context, st Saver, name, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read")
	}
	if name == "" {
		name = NameOf(path)
	}
	return Import(ctx, st, name, b)
}

// NameOf 文件名去掉扩展名作为多边形名
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// 文档注释：导入目录下全部 .geojson / .json 文件
// 背景：批量初始化时一个文件对应一个具名多边形；单个文件失败只记日志，继续处理其余文件。
// 返回：成功数量与第一个错误。
func ImportDir(ctx context.Context, st Saver, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, errors.Wrap(err, "read dir")
	}
	var first error
	n := 0
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if ext != ".geojson" && ext != ".json" {
			continue
		}
		if err := ImportFile(ctx, st, "", filepath.Join(dir, ent.Name())); err != nil {
			logger.L().Error("ingest_file_error", "file", ent.Name(), "err", err)
			if first == nil {
				first = err
			}
			continue
		}
		n++
	}
	return n, first
}

// FetchAndImport 拉取远程 GeoJSON 并写入
// 异常：网络错误、非 200、解析失败直接返回，不做重试（交由调度层处理）
func FetchAndImport(ctx context.Context, st Saver, name, srcURL string) error {
	logger.L().Info("ingest_start", "src", srcURL, "name", name)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetch")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("bad status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	return Import(ctx, st, name, b)
}
