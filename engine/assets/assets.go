package assets

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima2d/engine/assets/loaders"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

// eventBuffer bounds how many change notifications are kept for a slow reader.
const eventBuffer = 64

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes every file under the asset root, keeps the index
// current with fsnotify and dispatches loads to the registered loaders.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	events   chan fsnotify.Event
	errors   chan error
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		events:   make(chan fsnotify.Event, eventBuffer),
		errors:   make(chan error, eventBuffer),
		done:     make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	root, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	if s, err := os.Stat(root); err != nil || !s.IsDir() {
		return fmt.Errorf("asset directory '%s' is not readable: %w", assetsDir, core.ErrInvalidConfiguration)
	}
	am.root = root

	// Register loaders
	am.registerLoader(metadata.ResourceTypeText, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{ResourcePath: root})
	am.registerLoader(metadata.ResourceTypeTileMap, &loaders.TileMapLoader{ResourcePath: root})

	if err := am.addRecursive(root); err != nil {
		return err
	}

	go am.start()

	core.LogInfo("asset manager watching '%s' (%d files)", root, am.Count())
	return nil
}

// Root is the absolute asset directory.
func (am *AssetManager) Root() string {
	return am.root
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.closed() {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// RegisterLoader installs or replaces the loader for a resource type.
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.registerLoader(assetType, loader)
}

// resolve maps a resource name to its index key. A name that is already an
// indexed relative path wins; otherwise the type's directory and extensions
// are tried in order.
func (am *AssetManager) resolve(name string, resourceType metadata.ResourceType) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	key := path.Clean(filepath.ToSlash(name))
	if asset, ok := am.assets[key]; ok {
		return asset, true
	}

	loc, ok := locations[resourceType]
	if !ok {
		return AssetInfo{}, false
	}
	for _, ext := range loc.extensions {
		if asset, ok := am.assets[path.Join(loc.dir, key+ext)]; ok {
			return asset, true
		}
	}
	return AssetInfo{}, false
}

// Exists reports whether Load would find a file for name.
func (am *AssetManager) Exists(name string, resourceType metadata.ResourceType) bool {
	_, ok := am.resolve(name, resourceType)
	return ok
}

// Load an asset using the appropriate loader
func (am *AssetManager) Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	asset, exists := am.resolve(name, resourceType)
	if !exists {
		return nil, fmt.Errorf("%s '%s': %w", resourceType, name, core.ErrResourceNotFound)
	}

	am.mutex.Lock()
	asset.LastLoaded = time.Now()
	am.assets[asset.Path] = asset // Update the loaded time
	loader, loaderExists := am.loaders[resourceType]
	am.mutex.Unlock()

	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}

	resource, err := loader.Load(filepath.Join(am.root, filepath.FromSlash(asset.Path)), resourceType, params)
	if err != nil {
		core.LogError("failed to load %s '%s': %s", resourceType, name, err)
		return nil, err
	}
	resource.LoaderID = uint32(resourceType)
	return resource, nil
}

func (am *AssetManager) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return nil
	}
	am.mutex.RLock()
	loader, ok := am.loaders[metadata.ResourceType(resource.LoaderID)]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("no loader registered for resource '%s'", resource.Name)
	}
	return loader.Unload(resource)
}

// Assets lists indexed files of the given type.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0)
	for _, a := range am.assets {
		if a.Type == resourceType {
			out = append(out, a)
		}
	}
	return out
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Events delivers file changes under the asset root. Events are dropped
// when nobody drains the channel.
func (am *AssetManager) Events() <-chan fsnotify.Event {
	return am.events
}

func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	return nil
}

func (am *AssetManager) closed() bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.isClosed
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch '%s': %s", e.Name, err)
					}
				}
			} else if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			// A removed path cannot be stat'ed, so it is dropped from both the
			// index and the watch list without knowing whether it was a directory.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				_ = am.fsnotify.Remove(e.Name)
			}
			select {
			case am.events <- e:
			default:
			}

		case e, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", e)
			select {
			case am.errors <- e:
			default:
			}

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(root string) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) relative(p string) (string, bool) {
	rel, err := filepath.Rel(am.root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(p string) {
	key, ok := am.relative(p)
	if !ok {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	am.assets[key] = AssetInfo{
		Path: key,
		Type: determineAssetType(key),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(p string) {
	key, ok := am.relative(p)
	if !ok {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, key)
	prefix := key + "/"
	for k := range am.assets {
		if strings.HasPrefix(k, prefix) {
			delete(am.assets, k)
		}
	}
}

func extension(p string) string {
	return strings.ToLower(filepath.Ext(p))
}
