package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"GopherScene/internal/logger"
	"GopherScene/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LoadOBJ reads a Wavefront OBJ file and any material libraries it references.
// Faces using different materials become geometry groups of a multi-material mesh.
func LoadOBJ(path string) (*scene.Object, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	obj, err := ReadOBJ(file, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	obj.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return obj, nil
}

type faceVertex struct {
	v, vt, vn int
}

// ReadOBJ parses OBJ data. Material libraries and textures resolve relative to dir.
func ReadOBJ(r io.Reader, dir string) (*scene.Object, error) {
	var (
		positions, normals []mgl32.Vec3
		uvs                []mgl32.Vec2
		corners            []faceVertex
		cornerMaterial     []string
		materials          = map[string]*scene.Material{}
		current            string
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseVec(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
		case "vn":
			n, err := parseVec(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			normals = append(normals, mgl32.Vec3{n[0], n[1], n[2]})
		case "vt":
			t, err := parseVec(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", line, err)
			}
			uvs = append(uvs, mgl32.Vec2{t[0], t[1]})
		case "f":
			face, err := parseFace(fields[1:], len(positions), len(uvs), len(normals))
			if err != nil {
				return nil, fmt.Errorf("line %d: face: %w", line, err)
			}
			corners = append(corners, face...)
			for range face {
				cornerMaterial = append(cornerMaterial, current)
			}
		case "mtllib":
			if len(fields) < 2 {
				continue
			}
			lib, err := LoadMTL(filepath.Join(dir, strings.Join(fields[1:], " ")))
			if err != nil {
				// a missing library only loses colors
				logger.Log.Warn("Could not load material library", zap.String("file", fields[1]), zap.Error(err))
				continue
			}
			for name, m := range lib {
				materials[name] = m
			}
		case "usemtl":
			if len(fields) >= 2 {
				current = fields[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(corners) == 0 {
		return nil, fmt.Errorf("no faces")
	}

	// one output vertex per distinct (v, vt, vn) triple
	var (
		pos, uv, norm scene.Float32Array
		index         scene.Uint32Array
		seen          = make(map[faceVertex]uint32, len(corners))
	)
	for _, c := range corners {
		if i, ok := seen[c]; ok {
			index = append(index, i)
			continue
		}
		i := uint32(len(pos) / 3)
		seen[c] = i
		p := positions[c.v]
		pos = append(pos, p[0], p[1], p[2])
		if c.vt >= 0 {
			uv = append(uv, uvs[c.vt][0], uvs[c.vt][1])
		} else {
			uv = append(uv, 0, 0)
		}
		if c.vn >= 0 {
			n := normals[c.vn]
			norm = append(norm, n[0], n[1], n[2])
		} else {
			norm = append(norm, 0, 0, 0)
		}
		index = append(index, i)
	}
	if len(normals) == 0 {
		norm = RecalculateNormals(pos, index)
	}

	g := scene.NewGeometry()
	g.SetAttribute("position", scene.NewBufferAttribute(pos, 3, false))
	g.SetAttribute("normal", scene.NewBufferAttribute(norm, 3, false))
	g.SetAttribute("uv", scene.NewBufferAttribute(uv, 2, false))
	g.SetIndex(scene.NewBufferAttribute(index, 1, false))

	// contiguous runs of one material become groups
	var used []*scene.Material
	slot := map[string]int{}
	start := 0
	for i := 1; i <= len(cornerMaterial); i++ {
		if i < len(cornerMaterial) && cornerMaterial[i] == cornerMaterial[start] {
			continue
		}
		name := cornerMaterial[start]
		s, ok := slot[name]
		if !ok {
			m, found := materials[name]
			if !found {
				if name != "" {
					logger.Log.Warn("Material not found, using default", zap.String("material", name))
				}
				m = defaultOBJMaterial()
			}
			s = len(used)
			slot[name] = s
			used = append(used, m)
		}
		g.AddGroup(start, i-start, s)
		start = i
	}
	g.ComputeBoundingSphere()

	logger.Log.Debug("OBJ parsed",
		zap.Int("positions", len(positions)),
		zap.Int("vertices", len(pos)/3),
		zap.Int("triangles", len(index)/3),
		zap.Int("groups", len(g.Groups)))

	if len(used) == 1 {
		g.Groups = nil
		return scene.NewMesh(g, used[0]), nil
	}
	return scene.NewMultiMaterialMesh(g, used), nil
}

func defaultOBJMaterial() *scene.Material {
	m := scene.NewMaterial(scene.MeshPhongMaterial)
	m.Name = "default"
	return m
}

// LoadMTL reads a material library into Phong materials keyed by name.
func LoadMTL(path string) (map[string]*scene.Material, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dir := filepath.Dir(path)
	materials := map[string]*scene.Material{}
	var current *scene.Material

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				logger.Log.Warn("Malformed material line", zap.String("line", scanner.Text()))
				continue
			}
			current = defaultOBJMaterial()
			current.Name = fields[1]
			materials[fields[1]] = current
			continue
		}
		if current == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			current.Color = parseColor(fields[1:], current.Color)
		case "Ks":
			current.Specular = parseColor(fields[1:], current.Specular)
		case "Ke":
			current.Emissive = parseColor(fields[1:], current.Emissive)
		case "Ns":
			if v, err := parseVec(fields[1:], 1); err == nil {
				current.Shininess = v[0]
			}
		case "d":
			if v, err := parseVec(fields[1:], 1); err == nil {
				current.Opacity = v[0]
				current.Transparent = v[0] < 1
			}
		case "Tr":
			if v, err := parseVec(fields[1:], 1); err == nil {
				current.Opacity = 1 - v[0]
				current.Transparent = v[0] > 0
			}
		case "map_Kd":
			current.Map = loadMapTexture(dir, fields, scene.SRGBColorSpace)
		case "map_Bump", "map_bump", "bump", "norm":
			current.NormalMap = loadMapTexture(dir, fields, scene.NoColorSpace)
		case "map_Ke":
			current.EmissiveMap = loadMapTexture(dir, fields, scene.SRGBColorSpace)
		case "map_d":
			current.AlphaMap = loadMapTexture(dir, fields, scene.NoColorSpace)
			current.Transparent = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

// loadMapTexture loads the last field of a map statement, skipping any options before it.
func loadMapTexture(dir string, fields []string, cs scene.ColorSpace) *scene.Texture {
	if len(fields) < 2 {
		return nil
	}
	p := fields[len(fields)-1]
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	tex, err := LoadImage(p)
	if err != nil {
		logger.Log.Warn("Could not load texture map", zap.String("path", p), zap.Error(err))
		return nil
	}
	tex.ColorSpace = cs
	tex.WrapS = scene.RepeatWrapping
	tex.WrapT = scene.RepeatWrapping
	return tex
}

func parseColor(fields []string, fallback mgl32.Vec3) mgl32.Vec3 {
	v, err := parseVec(fields, 3)
	if err != nil {
		logger.Log.Warn("Invalid color", zap.Strings("fields", fields), zap.Error(err))
		return fallback
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// parseVec parses at least n floats. Extra components such as a vertex w are ignored.
func parseVec(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// resolveIndex converts a 1-based or negative OBJ index into a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", s, err)
	}
	if i < 0 {
		i += count
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d elements)", s, count)
	}
	return i, nil
}

// parseFace returns the face corners fan-triangulated.
func parseFace(parts []string, nv, nvt, nvn int) ([]faceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("need at least 3 vertices, got %d", len(parts))
	}
	face := make([]faceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")
		fv := faceVertex{vt: -1, vn: -1}
		var err error
		if fv.v, err = resolveIndex(vals[0], nv); err != nil {
			return nil, err
		}
		if len(vals) > 1 && vals[1] != "" {
			if fv.vt, err = resolveIndex(vals[1], nvt); err != nil {
				return nil, err
			}
		}
		if len(vals) > 2 && vals[2] != "" {
			if fv.vn, err = resolveIndex(vals[2], nvn); err != nil {
				return nil, err
			}
		}
		face = append(face, fv)
	}
	if len(face) == 3 {
		return face, nil
	}
	tris := make([]faceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		tris = append(tris, face[0], face[i], face[i+1])
	}
	return tris, nil
}

// RecalculateNormals returns area weighted vertex normals for an indexed triangle list.
func RecalculateNormals(positions scene.Float32Array, index scene.Uint32Array) scene.Float32Array {
	normals := make(scene.Float32Array, len(positions))
	at := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}
	for i := 0; i+2 < len(index); i += 3 {
		a, b, c := index[i], index[i+1], index[i+2]
		n := at(b).Sub(at(a)).Cross(at(c).Sub(at(a)))
		for _, v := range [3]uint32{a, b, c} {
			normals[v*3] += n[0]
			normals[v*3+1] += n[1]
			normals[v*3+2] += n[2]
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		n := mgl32.Vec3{normals[i], normals[i+1], normals[i+2]}
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		} else {
			n = mgl32.Vec3{0, 1, 0}
		}
		normals[i], normals[i+1], normals[i+2] = n[0], n[1], n[2]
	}
	return normals
}
