package sif

import (
	"sync"
	"testing"
)

func TestCachingLoaderMemoizes(t *testing.T) {
	underlying := &fakeLoader{grids: map[rasterKey]*Grid{
		{year: 2012, doy: 201}: uniformGrid(t, 2, 2, 0.5),
	}}
	cached := NewCachingLoader(underlying)

	var hits, misses int
	cached.OnLookup = func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}

	for i := 0; i < 3; i++ {
		grid, found, err := cached.Load(2012, 201)
		if err != nil || !found || grid == nil {
			t.Fatalf("Load #%d = (%v, %v, %v)", i, grid, found, err)
		}
	}

	if underlying.calls != 1 {
		t.Errorf("underlying loader called %d times, expected 1", underlying.calls)
	}
	if hits != 2 || misses != 1 {
		t.Errorf("hits=%d misses=%d, expected 2/1", hits, misses)
	}
	if cached.Len() != 1 {
		t.Errorf("cache holds %d keys, expected 1", cached.Len())
	}
}

func TestCachingLoaderCachesAbsent(t *testing.T) {
	underlying := &fakeLoader{grids: map[rasterKey]*Grid{}}
	cached := NewCachingLoader(underlying)

	for i := 0; i < 2; i++ {
		_, found, err := cached.Load(2012, 185)
		if err != nil || found {
			t.Fatalf("Load #%d = (found=%v, err=%v), expected absent", i, found, err)
		}
	}

	// Absence is as much a function of the archive as presence is.
	if underlying.calls != 1 {
		t.Errorf("underlying loader called %d times, expected 1", underlying.calls)
	}
}

func TestCachingLoaderConcurrentReads(t *testing.T) {
	underlying := &fakeLoader{grids: map[rasterKey]*Grid{
		{year: 2012, doy: 201}: uniformGrid(t, 2, 2, 0.5),
	}}
	cached := NewCachingLoader(underlying)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, found, err := cached.Load(2012, 201); err != nil || !found {
					t.Errorf("concurrent Load = (found=%v, err=%v)", found, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
