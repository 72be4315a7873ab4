package xtc

import (
	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type EventDataHDF5 struct {
	evt_number int32
	timestamp  float64
	fiducials  int32
	damage     int32
}

type RunInfoHDF5 struct {
	run_number int32
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(err)
	}
	return g
}

// createImageArray creates an extendable [events, height, width] dataset of
// doubles, chunked one image at a time.
func createImageArray(group *hdf5.Group, name string, height int, width int) *hdf5.Dataset {
	dimsArray := []uint{0, 0, 0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(height), uint(width)}

	fileSpace, err := hdf5.CreateSimpleDataspace(dimsArray, maxDimsArray)
	if err != nil {
		panic(err)
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}
	plist.SetChunk([]uint{1, uint(height), uint(width)})
	plist.SetDeflate(configuration.Compression)

	dataset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, fileSpace, plist)
	if err != nil {
		panic(err)
	}
	return dataset
}

// createPanelArray creates an extendable [events, panels, pixels] dataset
// for raw 16-bit panel frames.
func createPanelArray(group *hdf5.Group, name string, nPanels int, nPixels int) *hdf5.Dataset {
	dimsArray := []uint{0, 0, 0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDimsArray := []uint{uint(unlimitedDims), uint(nPanels), uint(nPixels)}

	fileSpace, err := hdf5.CreateSimpleDataspace(dimsArray, maxDimsArray)
	if err != nil {
		panic(err)
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}
	plist.SetChunk([]uint{1, 1, uint(nPixels)})
	plist.SetDeflate(configuration.Compression)

	dataset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_USHORT, fileSpace, plist)
	if err != nil {
		panic(err)
	}
	return dataset
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(err)
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(err)
	}
	plist.SetChunk([]uint{32768})
	plist.SetDeflate(configuration.Compression)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(err)
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		panic(err)
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, evtCounter int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, evtCounter)
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, evtCounter int) {
	length := uint(len(*data))
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		panic(err)
	}

	// extend
	eventsInFile := uint(evtCounter)
	newsize := []uint{eventsInFile + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{eventsInFile}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

func writeImageArray(dataset *hdf5.Dataset, data *[]float64, evtCounter int, height int, width int) {
	// extend
	newsize := []uint{uint(evtCounter) + 1, uint(height), uint(width)}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{uint(evtCounter), 0, 0}
	count := []uint{1, uint(height), uint(width)}
	filespace.SelectHyperslab(start, nil, count, nil)

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		panic(err)
	}

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}

func writePanelArray(dataset *hdf5.Dataset, data *[]uint16, evtCounter int, nPanels int, nPixels int) {
	// extend
	newsize := []uint{uint(evtCounter) + 1, uint(nPanels), uint(nPixels)}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{uint(evtCounter), 0, 0}
	count := []uint{1, uint(nPanels), uint(nPixels)}
	filespace.SelectHyperslab(start, nil, count, nil)

	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		panic(err)
	}

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}
